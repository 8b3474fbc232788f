package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/alightgram/alightgram-backend/internal/api/http"
	"github.com/alightgram/alightgram-backend/internal/api/http/middleware"
	sessionhttp "github.com/alightgram/alightgram-backend/internal/appstate/http"
	authhttp "github.com/alightgram/alightgram-backend/internal/auth/http"
	authmw "github.com/alightgram/alightgram-backend/internal/auth/middleware"
	commentshttp "github.com/alightgram/alightgram-backend/internal/comments/http"
	projectshttp "github.com/alightgram/alightgram-backend/internal/projects/http"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	// UploadsPerMinute and UploadBurst bound each client's upload requests.
	UploadsPerMinute int
	UploadBurst      int
	Logger           *zap.Logger
	App              *App
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(dep.Logger))
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.App.Pingers)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	requireUser := authmw.FirebaseAuthMiddleware(dep.App.Verifier)
	optionalUser := authmw.OptionalFirebaseAuth(dep.App.Verifier)
	uploadLimit := middleware.NewRateLimiter(dep.UploadsPerMinute, dep.UploadBurst).Middleware()

	authhttp.New(dep.App.Sessions).Register(api.Group("/auth"), requireUser, uploadLimit)

	projectsGroup := api.Group("/projects")
	projectshttp.New(dep.App.Feed, dep.App.Likes, dep.App.ProjectsSvc).Register(projectsGroup, projectshttp.Middlewares{
		RequireUser:  requireUser,
		OptionalUser: optionalUser,
		UploadLimit:  uploadLimit,
	})
	commentshttp.New(dep.App.Comments, dep.App.Sessions).Register(projectsGroup, requireUser)

	sessionhttp.New(dep.App.Feed, dep.App.Likes, dep.App.Sessions).Register(api, optionalUser)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:   []string{"X-Request-Id"},
		AllowWebSockets: true,
		MaxAge:          12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
