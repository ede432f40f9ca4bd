package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yatube/backend/internal/database"
	"github.com/yatube/backend/internal/feed"
	"github.com/yatube/backend/internal/handlers"
	"github.com/yatube/backend/internal/middleware"
)

type Server struct {
	db      database.Service
	handler *handlers.Handler
}

// cacheTTL reads FEED_CACHE_TTL (a Go duration, e.g. "20s") and falls back
// to the default window.
func cacheTTL() time.Duration {
	raw := os.Getenv("FEED_CACHE_TTL")
	if raw == "" {
		return feed.DefaultCacheTTL
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		log.Printf("Invalid FEED_CACHE_TTL %q, using default", raw)
		return feed.DefaultCacheTTL
	}
	return ttl
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	// Initialize database
	db := database.New()

	// The listing cache is owned here and injected into the handlers.
	cache := feed.NewPageCache(cacheTTL())

	handler := handlers.NewHandler(db.GetDB(), cache)

	newServer := &Server{
		db:      db,
		handler: handler,
	}

	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Post routes (public reads)
		api.GET("/posts", s.handler.Post.GetPosts)
		api.GET("/posts/:id", s.handler.Post.GetPost)

		// Comment routes (public reads)
		api.GET("/posts/:id/comments", s.handler.Comment.GetComments)

		// Group routes (public reads)
		api.GET("/groups", s.handler.Group.GetGroups)
		api.GET("/groups/:slug", s.handler.Group.GetGroup)

		// Profile routes (public reads; personalized when a token is sent)
		api.GET("/users/:username", middleware.OptionalAuth(), s.handler.User.GetUserProfile)
		api.GET("/users/:username/followers", s.handler.User.GetFollowers)
		api.GET("/users/:username/following", s.handler.User.GetFollowing)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth protected routes
			protected.GET("/me", s.handler.Auth.GetMe)

			// Followed feed
			protected.GET("/feed", s.handler.Post.GetFeed)

			// Post protected routes
			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.PUT("/posts/:id", s.handler.Post.UpdatePost)
			protected.DELETE("/posts/:id", s.handler.Post.DeletePost)

			// Comment protected routes
			protected.POST("/posts/:id/comments", s.handler.Comment.CreateComment)
			protected.DELETE("/comments/:commentId", s.handler.Comment.DeleteComment)

			// Group administration
			protected.POST("/groups", s.handler.Group.CreateGroup)

			// Follow graph
			protected.POST("/users/:username/follow", s.handler.User.FollowUser)
			protected.DELETE("/users/:username/follow", s.handler.User.UnfollowUser)

			// Cache administration
			protected.POST("/admin/cache/clear", s.handler.Post.ClearCache)
		}
	}

	return r
}
