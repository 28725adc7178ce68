package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/taha-association/links-backend/internal/api/http"
	"github.com/taha-association/links-backend/internal/api/http/middleware"
	gatehttp "github.com/taha-association/links-backend/internal/gate/http"
	gateservice "github.com/taha-association/links-backend/internal/gate/service"
	linkshttp "github.com/taha-association/links-backend/internal/links/http"
	"github.com/taha-association/links-backend/internal/links/service"
)

type RouterDeps struct {
	ServiceName   string
	Version       string
	Redis         *redis.Client
	RemoteEnabled bool
	Links         *service.LinkService
	Gate          *gateservice.GateService
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Redis, dep.RemoteEnabled)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RequestIDMiddleware())

	linksGroup := api.Group("/links")
	linkshttp.NewHandler(dep.Links).Register(linksGroup)

	gateGroup := api.Group("/gate")
	gatehttp.NewHandler(dep.Gate).Register(gateGroup)

	return r
}
