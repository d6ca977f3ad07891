package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skycast/skycast-server/internal/api/http/handler"
	"github.com/skycast/skycast-server/internal/api/http/middleware"
	"github.com/skycast/skycast-server/internal/logger"
	"github.com/skycast/skycast-server/internal/model"
)

// Router wires HTTP routes to their handlers and middleware.
type Router struct {
	authService    handler.AuthService
	weatherService handler.WeatherService
	tokenParser    middleware.TokenParser
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates a new HTTP Router instance.
func New(
	authService handler.AuthService,
	weatherService handler.WeatherService,
	tokenParser middleware.TokenParser,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		weatherService: weatherService,
		tokenParser:    tokenParser,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register sets up all routes and middleware and returns the engine.
func (r *Router) Register() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	logging := middleware.NewLogging(r.logger)
	engine.Use(logging.Handle)

	authenticate := middleware.NewAuthenticate(r.tokenParser, r.contextManager, r.logger)

	authHandler := handler.NewAuth(r.authService, r.contextManager, r.logger)
	weatherHandler := handler.NewWeather(r.weatherService, r.logger)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := engine.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/logout-all", authenticate.Handle, authHandler.LogoutAll)
	}

	weather := engine.Group("/api/weather", authenticate.Handle)
	{
		weather.GET("/forecast", weatherHandler.Forecast)
	}

	return engine
}
