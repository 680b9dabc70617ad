package server

import (
	"net/http"

	"backend/internal/config"
	"backend/internal/handler"
	"backend/internal/mailer"
	"backend/internal/middleware"
	"backend/internal/ratelimit"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/token"
	"backend/internal/tokenstore"
	"backend/internal/twofactor"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	cfg    *config.Config
	log    *zap.Logger
}

func NewServer(db *sqlx.DB, redisClient redis.UniversalClient, mail mailer.Mailer, cfg *config.Config, log *zap.Logger, repoLog *logrus.Logger) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	s := &Server{
		router: router,
		cfg:    cfg,
		log:    log,
	}

	s.setupRoutes(db, redisClient, mail, repoLog)

	return s
}

func (s *Server) setupRoutes(db *sqlx.DB, redisClient redis.UniversalClient, mail mailer.Mailer, repoLog *logrus.Logger) {
	cfg := s.cfg

	s.router.Use(middleware.AllowedHosts(cfg.Server.AllowedHosts))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	s.router.Use(cors.New(corsCfg))

	// Auth components
	userRepo := repository.NewUserRepository(db, repoLog)
	jwtManager := token.NewJWTManager(token.JWTConfig{
		SecretKey:       []byte(cfg.Auth.SecretKey),
		AccessLifetime:  cfg.AccessTokenLifetime(),
		RefreshLifetime: cfg.RefreshTokenLifetime(),
	})
	resetGen := token.NewResetGenerator([]byte(cfg.Auth.SecretKey), cfg.ResetTokenLifetime())
	totpManager := twofactor.NewManager(cfg.Auth.TOTPIssuer)
	denylist := tokenstore.NewDenylist(redisClient, cfg.RefreshTokenLifetime())
	limiter := ratelimit.New(redisClient)

	authService := service.NewAuthService(
		userRepo, jwtManager, resetGen, totpManager, denylist, mail,
		cfg.ResetURLBase(), cfg.Auth.RotateRefresh, s.log,
	)
	exposeResetTokens := cfg.Debug || cfg.Reset.ExposeResetTokens
	authHandler := handler.NewAuthHandler(authService, exposeResetTokens, s.log)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Public authentication routes
	s.router.POST("/register", authHandler.Register)
	s.router.POST("/login",
		middleware.RateLimit(limiter, "login", cfg.Throttle.LoginPerMinute, s.log),
		authHandler.Login)
	s.router.POST("/password-reset-request",
		middleware.RateLimit(limiter, "reset", cfg.Throttle.ResetPerMinute, s.log),
		authHandler.PasswordResetRequest)
	s.router.POST("/password-reset-confirm", authHandler.PasswordResetConfirm)
	s.router.POST("/token/refresh", authHandler.RefreshToken)

	// Authenticated routes
	authRequired := s.router.Group("/")
	authRequired.Use(middleware.AuthMiddleware(jwtManager, s.log))
	{
		authRequired.GET("/profile", authHandler.Profile)
		authRequired.GET("/generate-2fa", authHandler.GenerateTwoFactor)
	}
}

// Router exposes the underlying engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Run(addr string) {
	s.log.Info("Server starting", zap.String("addr", addr))
	if err := s.router.Run(addr); err != nil {
		s.log.Fatal("Server failed to start", zap.Error(err))
	}
}
