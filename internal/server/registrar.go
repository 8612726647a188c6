package server

import "github.com/gin-gonic/gin"

// Registrar is a common interface for all HTTP route registrars.
// public routes skip auth (registration, login); api routes run behind
// the bearer-token middleware.
type Registrar interface {
	Register(public, api *gin.RouterGroup)
}
