package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/message-mint/whatsapp-api/internal/interfaces/httpserver/handlers/instancehandler"
)

// V1Route groups the versioned API routes.
type V1Route struct {
	instanceHandler *instancehandler.InstanceHandler
}

func NewV1Route(instanceHandler *instancehandler.InstanceHandler) *V1Route {
	return &V1Route{instanceHandler: instanceHandler}
}

// RegisterRouter attaches the v1 routes to the given router group.
func (r *V1Route) RegisterRouter(router gin.IRouter) {
	v1 := router.Group("/v1")
	v1.GET("/instance", r.instanceHandler.Handle)
}
