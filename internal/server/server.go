package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"gymplan/internal/auth"
	"gymplan/internal/config"
	"gymplan/internal/email"
	"gymplan/internal/gym"
	"gymplan/internal/membership"
	"gymplan/internal/plan"
	"gymplan/internal/user"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	email  *email.Service
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RequestLoggingMiddleware())

	userRepo := user.NewRepository(db)
	gymRepo := gym.NewRepository(db)
	membershipRepo := membership.NewRepository(db)
	planRepo := plan.NewRepository(db)

	userService := user.NewService(userRepo, emailService, cfg.JWTSecret)
	gymService := gym.NewService(gymRepo)
	membershipService := membership.NewService(membershipRepo, gymRepo, userRepo, emailService)
	planService := plan.NewService(planRepo, membershipRepo, gymRepo)

	userHandler := user.NewHandler(userService)
	gymHandler := gym.NewHandler(gymService)
	membershipHandler := membership.NewHandler(membershipService)
	planHandler := plan.NewHandler(planService)

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/register", userHandler.Register)
		public.POST("/verify", userHandler.VerifyEmail)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
		public.POST("/forgot-password", userHandler.ForgotPassword)
		public.POST("/reset-password", userHandler.ResetPassword)
	}

	// Every authenticated route materializes expired roles and loads the
	// live user before any authorization decision. Token claims are only
	// used to identify the account.
	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	actorMiddleware := ActorMiddleware(userService)

	protected := router.Group("/")
	protected.Use(authMiddleware, actorMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/gyms", gymHandler.ListGyms)
		protected.GET("/gyms/:gymID", gymHandler.GetGym)
		protected.GET("/plans", planHandler.List)
		protected.POST("/plans", planHandler.Create)
		protected.GET("/plans/:planID", planHandler.Get)
		protected.PUT("/plans/:planID", planHandler.Update)
		protected.PATCH("/plans/:planID/visibility", planHandler.SetVisibility)
		protected.DELETE("/plans/:planID", planHandler.Delete)
		protected.GET("/plans/:planID/days", planHandler.Days)
		// Members may leave on their own; owner checks happen in the service.
		protected.DELETE("/gyms/:gymID/members/:email", membershipHandler.Withdraw)
	}

	owner := router.Group("/")
	owner.Use(authMiddleware, actorMiddleware, RequireEffectiveRole(user.RoleGymOwner))
	{
		owner.POST("/gyms", gymHandler.CreateGym)
		owner.PATCH("/gyms/:gymID/capacity", gymHandler.IncreaseCapacity)
		owner.POST("/gyms/:gymID/deactivate", gymHandler.DeactivateGym)
		owner.POST("/gyms/:gymID/members", membershipHandler.Enroll)
		owner.GET("/gyms/:gymID/members", membershipHandler.ListByGym)
		owner.PATCH("/memberships/:membershipID/extend", membershipHandler.Extend)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, actorMiddleware, RequireEffectiveRole(user.RoleAdmin))
	{
		admin.PATCH("/users/:email/role", userHandler.ChangeRole)
		admin.POST("/users/:email/deactivate", userHandler.Deactivate)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
