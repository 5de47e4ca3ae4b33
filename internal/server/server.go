package server

import (
	"net/http"

	"fruitsight/internal/config"
	"fruitsight/internal/handler"
	"fruitsight/internal/inference"
	"fruitsight/internal/middleware"
	"fruitsight/internal/repository"
	"fruitsight/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	cfg    *config.Config
	log    *logrus.Logger
	logger *zap.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, log *logrus.Logger, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		db:     db,
		cfg:    cfg,
		log:    log,
		logger: logger,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Initialize Auth components
	accountRepo := repository.NewAccountRepository(s.db, s.log)
	tokenService := service.NewTokenService([]byte(s.cfg.Auth.JWTSecret), s.cfg.TokenTTL())
	authService := service.NewAuthService(accountRepo, tokenService, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.log)

	inferenceClient := inference.NewClient(s.cfg.Inference.URL)
	inferenceHandler := handler.NewInferenceHandler(inferenceClient, s.log)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)

	// Authenticated routes: inference uploads go through the backend so the
	// external service URL stays server-side.
	authRequired := s.router.Group("/api")
	authRequired.Use(middleware.AuthMiddleware(tokenService, s.logger))
	{
		authRequired.POST("/predict", inferenceHandler.Predict)
		authRequired.POST("/gradcam", inferenceHandler.GradCAM)
		authRequired.POST("/shap", inferenceHandler.SHAP)
	}
}

func (s *Server) Run(addr string) {
	s.log.Infof("Server starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Server failed to start: %v", err)
	}
}
