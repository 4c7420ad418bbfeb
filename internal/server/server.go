package server

import (
	"context"
	"strings"
	"time"

	"anoa.com/communityforum/internal/config"
	"anoa.com/communityforum/internal/handler"
	"anoa.com/communityforum/internal/middleware"
	"anoa.com/communityforum/internal/model"
	"anoa.com/communityforum/internal/repository"
	"anoa.com/communityforum/internal/service"
	"anoa.com/communityforum/pkg/mailer"
	"anoa.com/communityforum/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine        *gin.Engine
	cfg           *config.Config
	threadService service.ThreadService
}

// New wires repositories, services, handlers and routes. redisClient and
// mail may be nil; the affected features degrade instead of failing.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, mail mailer.Sender) *Server {
	userRepo := repository.NewUserRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	authService := service.NewAuthService(userRepo, tokens, mail, cfg.AppBaseURL, cfg.ResetTTL)
	authHandler := handler.NewAuthHandler(authService)

	adminService := service.NewAdminService(userRepo)
	adminHandler := handler.NewAdminHandler(adminService)

	threadService := service.NewThreadService(threadRepo, userRepo, redisClient)
	threadHandler := handler.NewThreadHandler(threadService)

	commentService := service.NewCommentService(commentRepo, threadRepo, userRepo)
	commentHandler := handler.NewCommentHandler(commentService)

	authMiddleware := middleware.NewAuthMiddleware(tokens, userRepo)

	engine := gin.Default()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := engine.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	api.Use(authMiddleware.RequireAuth())
	{
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireRoles(model.RoleAdmin))
		admin.Use(authMiddleware.RequirePermissions(model.PermissionManageUsers))
		{
			admin.POST("/users", adminHandler.CreateUser)
			admin.GET("/users", adminHandler.GetAllUsers)
			admin.PUT("/users/:id", adminHandler.UpdateUser)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
		}

		api.GET("/threads", threadHandler.GetAllThreads)
		api.GET("/threads/:id", threadHandler.GetThread)
		api.POST("/threads", authMiddleware.RequirePermissions(model.PermissionPost), threadHandler.CreateThread)
		api.PATCH("/threads/:id/moderate", authMiddleware.RequirePermissions(model.PermissionModerate), threadHandler.ModerateThread)
		api.POST("/threads/:id/like", threadHandler.ToggleLike)

		api.GET("/threads/:id/comments", commentHandler.ListComments)
		api.POST("/comments", authMiddleware.RequirePermissions(model.PermissionComment), commentHandler.CreateComment)
		api.POST("/comments/:id/like", commentHandler.LikeComment)
		api.PUT("/comments/:id", commentHandler.UpdateComment)
		api.DELETE("/comments/:id", commentHandler.DeleteComment)
		api.DELETE("/moderation/comments/:id", authMiddleware.RequirePermissions(model.PermissionModerate), commentHandler.DeleteCommentAsModerator)
	}

	return &Server{
		engine:        engine,
		cfg:           cfg,
		threadService: threadService,
	}
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Run(ctx context.Context) error {
	go s.threadService.StartViewSyncWorker(ctx)
	return s.engine.Run(":" + s.cfg.Port)
}
