package friends

import (
	"net/http"

	"github.com/cinematch/cinematch/internal/app"
	svcErr "github.com/cinematch/cinematch/internal/errors"
	"github.com/cinematch/cinematch/internal/server"

	"github.com/gin-gonic/gin"
)

// Registrar ties the friends service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the friends service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the friend-graph routes to the authenticated API group.
func (r *Registrar) Register(public, api *gin.RouterGroup) {
	h := &handler{svc: NewService(r.appCtx)}

	api.GET("/friends", h.list)
	api.POST("/friends", h.request)
	api.PUT("/friends", h.respond)
	api.DELETE("/friends", h.unfriend)
}

type handler struct {
	svc *Service
}

type requestBody struct {
	AddresseeID uint64 `json:"addresseeId"`
}

type respondBody struct {
	RequesterID uint64 `json:"requesterId"`
	Status      string `json:"status"`
}

type unfriendBody struct {
	FriendID uint64 `json:"friendId"`
}

// list serves three shapes behind one route, mirroring the query contract:
// ?type=requests (pending), ?type=accepted (friends), ?query=<name> (search).
func (h *handler) list(c *gin.Context) {
	callerID, _ := server.CurrentUserID(c)

	switch {
	case c.Query("type") == "requests":
		requests, err := h.svc.ListRequests(c.Request.Context(), callerID)
		if err != nil {
			server.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, requests)

	case c.Query("type") == "accepted":
		friends, err := h.svc.ListFriends(c.Request.Context(), callerID)
		if err != nil {
			server.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, friends)

	case c.Query("query") != "":
		users, err := h.svc.Search(c.Request.Context(), callerID, c.Query("query"))
		if err != nil {
			server.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)

	default:
		server.AbortWithError(c, svcErr.BadRequest("invalid request type"))
	}
}

func (h *handler) request(c *gin.Context) {
	callerID, _ := server.CurrentUserID(c)

	var req requestBody
	if err := c.ShouldBindJSON(&req); err != nil || req.AddresseeID == 0 {
		server.AbortWithError(c, svcErr.BadRequest("addresseeId is required"))
		return
	}

	if err := h.svc.SendRequest(c.Request.Context(), callerID, req.AddresseeID); err != nil {
		server.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "friend request sent"})
}

func (h *handler) respond(c *gin.Context) {
	callerID, _ := server.CurrentUserID(c)

	var req respondBody
	if err := c.ShouldBindJSON(&req); err != nil || req.RequesterID == 0 {
		server.AbortWithError(c, svcErr.BadRequest("requesterId and status are required"))
		return
	}

	if err := h.svc.Respond(c.Request.Context(), callerID, req.RequesterID, req.Status); err != nil {
		server.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend request " + req.Status})
}

func (h *handler) unfriend(c *gin.Context) {
	callerID, _ := server.CurrentUserID(c)

	var req unfriendBody
	if err := c.ShouldBindJSON(&req); err != nil || req.FriendID == 0 {
		server.AbortWithError(c, svcErr.BadRequest("friendId is required"))
		return
	}

	if err := h.svc.Unfriend(c.Request.Context(), callerID, req.FriendID); err != nil {
		server.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friendship removed"})
}
