package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-user-accounts/internal/interface/http"
)

// UserModule wires user HTTP handlers into routes
// Public: POST /api/users
// Protected: PUT /api/users
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, auth gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Auth: auth}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.POST("/users", m.Handler.Create)

	auth := rg.Group("/")
	auth.Use(m.Auth)
	{
		auth.PUT("/users", m.Handler.Update)
	}
}
