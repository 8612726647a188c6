package movies

import (
	"net/http"
	"strconv"

	"github.com/cinematch/cinematch/internal/app"
	svcErr "github.com/cinematch/cinematch/internal/errors"
	"github.com/cinematch/cinematch/internal/server"

	"github.com/gin-gonic/gin"
)

// Registrar ties the movies proxy into the HTTP router.
type Registrar struct {
	appCtx  *app.AppContext
	catalog Catalog
}

// NewRegistrar creates a new Registrar for the movies proxy.
func NewRegistrar(appCtx *app.AppContext, cat Catalog) *Registrar {
	return &Registrar{appCtx: appCtx, catalog: cat}
}

// Register attaches the catalog browsing routes.
func (r *Registrar) Register(public, api *gin.RouterGroup) {
	h := &handler{svc: NewService(r.appCtx, r.catalog)}

	api.GET("/movies", h.browse)
	api.GET("/movies/search", h.search)
	api.GET("/movies/details", h.details)
}

type handler struct {
	svc *Service
}

func (h *handler) browse(c *gin.Context) {
	movies, err := h.svc.Browse(c.Request.Context(), c.Query("query"))
	if err != nil {
		server.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

func (h *handler) search(c *gin.Context) {
	movie, err := h.svc.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		server.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *handler) details(c *gin.Context) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		server.AbortWithError(c, svcErr.BadRequest("id is required"))
		return
	}

	movie, err := h.svc.Details(c.Request.Context(), id)
	if err != nil {
		server.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}
