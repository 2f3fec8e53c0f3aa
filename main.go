package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/slateboard/slateboard-api/config"
	"github.com/slateboard/slateboard-api/middleware"
	"github.com/slateboard/slateboard-api/routes"
	"github.com/slateboard/slateboard-api/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := config.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	log.Println("✅ Database connected successfully")

	if err := config.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	go scheduleSessionCleanup(db)

	deps := routes.NewDeps(db)

	if utils.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	allowedOrigins := []string{
		frontendURL,
		"https://slateboard.app",
		"https://www.slateboard.app",
	}

	corsConfig := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		utils.SafeDebug("%s %s - %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	})

	router.Use(middleware.RateLimiter())

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, deps)
		v1.GET("/ws/projects/:id", deps.WS.HandleWS)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.SetupUserRoutes(protected, deps)
			routes.SetupProjectRoutes(protected, deps)
			routes.SetupScheduleRoutes(protected, deps)
			routes.SetupBudgetRoutes(protected, deps)
			routes.SetupContentRoutes(protected, deps)
			routes.SetupExportRoutes(protected, deps)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	utils.LogStartup("slateboard-api", "1.0.0", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// scheduleSessionCleanup prunes expired refresh tokens and stale
// verification tokens once a day.
func scheduleSessionCleanup(db *sql.DB) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	cleanExpiredSessions(db)
	for range ticker.C {
		cleanExpiredSessions(db)
	}
}

func cleanExpiredSessions(db *sql.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		utils.SafeError("session cleanup failed: %v", err)
		return
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		utils.SafeInfo("cleaned %d expired sessions", rows)
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM email_verifications WHERE expires_at < NOW() - INTERVAL '7 days'`); err != nil {
		utils.SafeError("verification cleanup failed: %v", err)
	}
}
