package interests

import (
	"net/http"
	"strconv"

	"github.com/cinematch/cinematch/internal/app"
	svcErr "github.com/cinematch/cinematch/internal/errors"
	"github.com/cinematch/cinematch/internal/server"

	"github.com/gin-gonic/gin"
)

// Registrar ties the interests service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the interests service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the interest-list routes to the authenticated API group.
func (r *Registrar) Register(public, api *gin.RouterGroup) {
	h := &handler{svc: NewService(r.appCtx)}

	api.GET("/interests", h.list)
	api.POST("/interests", h.add)
	api.DELETE("/interests/:id", h.remove)
}

type handler struct {
	svc *Service
}

type addRequest struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

func (h *handler) list(c *gin.Context) {
	callerID, _ := server.CurrentUserID(c)

	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	var token *string
	if v := c.Query("cursor"); v != "" {
		token = &v
	}

	page, err := h.svc.List(c.Request.Context(), callerID, token, limit)
	if err != nil {
		server.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handler) add(c *gin.Context) {
	callerID, _ := server.CurrentUserID(c)

	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.AbortWithError(c, svcErr.BadRequest("invalid request body"))
		return
	}

	added, err := h.svc.Add(c.Request.Context(), callerID, req.Name, req.ImageURL)
	if err != nil {
		server.AbortWithError(c, err)
		return
	}
	if !added {
		c.JSON(http.StatusOK, gin.H{"message": "interest already on your list"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "interest added"})
}

func (h *handler) remove(c *gin.Context) {
	callerID, _ := server.CurrentUserID(c)

	interestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || interestID == 0 {
		server.AbortWithError(c, svcErr.BadRequest("invalid interest id"))
		return
	}

	if err := h.svc.Remove(c.Request.Context(), callerID, interestID); err != nil {
		server.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "interest removed"})
}
