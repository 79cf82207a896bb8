package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cppla/miniblog/auth"
	"github.com/cppla/miniblog/config"
	"github.com/cppla/miniblog/controllers"
	"github.com/cppla/miniblog/metrics"
	"github.com/cppla/miniblog/middleware"
	"github.com/cppla/miniblog/utils"
)

// Deps are the collaborators the router wires into controllers and middleware.
type Deps struct {
	Posts    controllers.PostStore
	Comments controllers.CommentStore
	Verifier auth.TokenVerifier
	Metrics  metrics.Provider
	Logger   *zap.Logger
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, deps Deps) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Noop()
	}

	r := gin.New()
	// Request and panic logs go to their own rolling file
	gl := deps.Logger
	if cfg.GinLogPath != "" {
		if fl, err := utils.NewRollingFileLogger(cfg.GinLogPath, cfg); err == nil {
			gl = fl
		} else {
			deps.Logger.Warn("gin log file unavailable, using application logger", zap.Error(err))
		}
	}
	r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
	r.Use(ginzap.CustomRecoveryWithZap(gl, false, func(ctx *gin.Context, _ any) {
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		ctx.Abort()
	}))
	r.Use(secure.New(secureConfig()))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics(deps.Metrics))
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/health", func(ctx *gin.Context) {
		utils.JSON(ctx, http.StatusOK, gin.H{"status": "ok"})
	})

	postController := controllers.NewPostController(deps.Posts, deps.Logger)
	commentController := controllers.NewCommentController(deps.Comments, deps.Logger)

	api := r.Group("/api")
	api.GET("", func(ctx *gin.Context) {
		utils.Message(ctx, http.StatusOK, "Base route")
	})

	postsGroup := api.Group("/posts")
	postsGroup.GET("", postController.ListPosts)
	postsGroup.GET("/:id", postController.GetPost)
	postsGroup.GET("/:id/comments", commentController.ListComments)

	protected := postsGroup.Group("")
	protected.Use(
		middleware.RateLimit(cfg.RateLimitPerMinute),
		middleware.AuthRequired(deps.Verifier, deps.Logger, deps.Metrics),
	)
	protected.POST("", postController.CreatePost)
	protected.PUT("/:id", postController.UpdatePost)
	protected.DELETE("/:id", postController.DeletePost)
	protected.POST("/:id/comments", commentController.CreateComment)
	protected.PUT("/:id/comments/:commentId", commentController.UpdateComment)
	protected.DELETE("/:id/comments/:commentId", commentController.DeleteComment)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "route not found")
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = origins
	}
	return c
}

// secureConfig sets the standard browser hardening headers. TLS is terminated
// in front of the service, so no redirect or host pinning happens here.
func secureConfig() secure.Config {
	return secure.Config{
		STSSeconds:            15552000,
		STSIncludeSubdomains:  true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		IENoOpen:              true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'; frame-ancestors 'none'",
	}
}
