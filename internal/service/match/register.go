package match

import (
	"net/http"
	"strconv"

	"github.com/cinematch/cinematch/internal/app"
	svcErr "github.com/cinematch/cinematch/internal/errors"
	"github.com/cinematch/cinematch/internal/server"

	"github.com/gin-gonic/gin"
)

// Registrar ties the match service into the HTTP router.
type Registrar struct {
	appCtx  *app.AppContext
	catalog Catalog
}

// NewRegistrar creates a new Registrar for the match service.
func NewRegistrar(appCtx *app.AppContext, cat Catalog) *Registrar {
	return &Registrar{appCtx: appCtx, catalog: cat}
}

// Register attaches the match routes to the authenticated API group.
func (r *Registrar) Register(public, api *gin.RouterGroup) {
	h := &handler{svc: NewService(r.appCtx, r.catalog)}

	api.POST("/match/start", h.start)
	api.GET("/match/:sessionId", h.candidates)
	api.GET("/match/:sessionId/status", h.status)
	api.POST("/match/:sessionId/vote", h.vote)
}

type handler struct {
	svc *Service
}

type startRequest struct {
	FriendID uint64 `json:"friendId"`
}

type voteRequest struct {
	InterestID uint64 `json:"interestId"`
	Action     string `json:"action"`
}

func (h *handler) start(c *gin.Context) {
	callerID, _ := server.CurrentUserID(c)

	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FriendID == 0 {
		server.AbortWithError(c, svcErr.BadRequest("friendId is required"))
		return
	}

	result, err := h.svc.StartSession(c.Request.Context(), callerID, req.FriendID)
	if err != nil {
		server.AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

func (h *handler) candidates(c *gin.Context) {
	callerID, _ := server.CurrentUserID(c)
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	movies, err := h.svc.Candidates(c.Request.Context(), sessionID, callerID)
	if err != nil {
		server.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

func (h *handler) status(c *gin.Context) {
	callerID, _ := server.CurrentUserID(c)
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	status, err := h.svc.Status(c.Request.Context(), sessionID, callerID)
	if err != nil {
		server.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *handler) vote(c *gin.Context) {
	callerID, _ := server.CurrentUserID(c)
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.AbortWithError(c, svcErr.BadRequest("invalid vote payload"))
		return
	}

	result, err := h.svc.CastVote(c.Request.Context(), sessionID, callerID, req.InterestID, req.Action)
	if err != nil {
		server.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// sessionParam parses the :sessionId path segment; the route layer hands
// the service an already-typed id.
func sessionParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("sessionId"), 10, 64)
	if err != nil || id == 0 {
		server.AbortWithError(c, svcErr.BadRequest("invalid session id"))
		return 0, false
	}
	return id, true
}
