package auth

import (
	"net/http"
	"time"

	"github.com/cinematch/cinematch/internal/app"
	svcErr "github.com/cinematch/cinematch/internal/errors"
	"github.com/cinematch/cinematch/internal/server"

	"github.com/gin-gonic/gin"
)

// Registrar ties the auth service into the HTTP router.
type Registrar struct {
	appCtx   *app.AppContext
	tokenTTL time.Duration
}

// NewRegistrar creates a new Registrar for the auth service.
func NewRegistrar(appCtx *app.AppContext, tokenTTL time.Duration) *Registrar {
	return &Registrar{appCtx: appCtx, tokenTTL: tokenTTL}
}

// Register attaches registration and login to the public group.
func (r *Registrar) Register(public, api *gin.RouterGroup) {
	h := &handler{svc: NewService(r.appCtx, r.tokenTTL)}

	public.POST("/users", h.register)
	public.POST("/login", h.login)
}

type handler struct {
	svc *Service
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.AbortWithError(c, svcErr.BadRequest("invalid request body"))
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		server.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.AbortWithError(c, svcErr.BadRequest("invalid request body"))
		return
	}

	token, user, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		server.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
