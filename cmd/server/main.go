package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/cruxmailweb/access-management-tool/internal/auth"
	"github.com/cruxmailweb/access-management-tool/internal/config"
	"github.com/cruxmailweb/access-management-tool/internal/database"
	"github.com/cruxmailweb/access-management-tool/internal/handlers"
	"github.com/cruxmailweb/access-management-tool/internal/logger"
	"github.com/cruxmailweb/access-management-tool/internal/services"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log := logger.Get()
	cfg := config.Load()

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	tokens := auth.NewTokenManager(cfg)
	dispatcher := services.NewEmailService(cfg, log)
	clock := services.SystemClock()
	reminders := services.NewReminderService(db, dispatcher, clock, log)
	h := handlers.New(db, log, tokens, reminders)

	if cfg.SweepEnabled {
		sweeper := services.NewReminderSweeper(db, dispatcher, clock, log, cfg.SweepInterval)
		sweeper.Start()
		defer sweeper.Stop()
	}

	router := gin.Default()
	router.SetTrustedProxies(cfg.TrustedProxies)
	router.Use(handlers.TraceID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	router.GET("/", h.Home)
	router.GET("/health", h.Health)

	loginLimiter := auth.NewLoginRateLimiter(10, 5)
	router.POST("/auth/login", loginLimiter.Middleware(), h.Login)

	// Routes requiring a valid session
	protected := router.Group("")
	protected.Use(auth.RequireAuth(tokens))
	{
		protected.POST("/auth/logout", h.Logout)
		protected.GET("/auth/session", h.Session)

		protected.GET("/applications", h.ListApplications)
		protected.GET("/applications/:id", h.GetApplication)
		protected.GET("/reminders", h.GetReminder)
	}

	// Routes requiring the global admin role
	admin := router.Group("")
	admin.Use(auth.RequireAuth(tokens), auth.RequireAdmin())
	{
		admin.POST("/applications", h.CreateApplication)
		admin.PUT("/applications/:id", h.UpdateApplication)
		admin.DELETE("/applications/:id", h.DeleteApplication)

		admin.POST("/applications/:id/users", h.AddMember)
		admin.PUT("/applications/:id/users/:userId", h.UpdateMember)
		admin.DELETE("/applications/:id/users/:userId", h.RemoveMember)
		admin.POST("/applications/:id/users/import", h.ImportMembers)

		admin.GET("/users", h.ListUsers)
		admin.POST("/users", h.CreateUser)
		admin.DELETE("/users/:id", h.DeleteUser)

		admin.POST("/reminders", h.UpsertReminder)
		admin.PUT("/reminders", h.SendReminder)
	}

	// Self-or-admin check happens inside the handler
	protected.PUT("/users/:id", h.UpdateUser)

	log.WithField("port", cfg.Port).Info("Server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Server exited")
	}
}
