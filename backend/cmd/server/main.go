package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/etoland/my-circle/backend/internal/auth"
	"github.com/etoland/my-circle/backend/internal/graph"
	"github.com/etoland/my-circle/backend/internal/ingest"
	"github.com/etoland/my-circle/backend/internal/match"
	"github.com/etoland/my-circle/backend/internal/profile"
	"github.com/etoland/my-circle/backend/pkg/config"
	apperrors "github.com/etoland/my-circle/backend/pkg/errors"
	"github.com/etoland/my-circle/backend/pkg/logger"
)

// Interfaces over the concrete services so the router can be
// exercised with fakes in tests.

type matcher interface {
	FindMatches(ctx context.Context, userID string, minShared, limit int) (*match.Result, error)
}

type ingester interface {
	Ingest(ctx context.Context, userID string) (*profile.Profile, error)
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*profile.Profile, error)
	Put(ctx context.Context, p *profile.Profile) error
}

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting match service...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver",
			zap.Error(apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)))
	}
	defer driver.Close(context.Background())

	// Verify Neo4j connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	// Initialize DynamoDB client
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatal("Failed to load AWS configuration", zap.Error(err))
	}

	// Initialize dependencies
	graphRepo := graph.NewRepository(driver)
	profiles := profile.NewStore(dynamodb.NewFromConfig(awsCfg), cfg.UsersTableName)
	matchSvc := match.NewService(graphRepo, profiles)
	ingestSvc := ingest.NewService(graphRepo, profiles)

	router := newRouter(cfg, log, matchSvc, ingestSvc, profiles)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

func newRouter(cfg *config.Config, log *zap.Logger, matchSvc matcher, ingestSvc ingester, profiles profileStore) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Ranked matches for a user
	router.GET("/matches/:userId", auth.RequireToken(), func(c *gin.Context) {
		userID := c.Param("userId")
		ctx := c.Request.Context()

		minShared := queryInt(c, "min_shared", cfg.MatchMinInterests)
		limit := queryInt(c, "limit", cfg.MatchLimit)

		result, err := matchSvc.FindMatches(ctx, userID, minShared, limit)
		if err != nil {
			if apperrors.IsErrorType(err, apperrors.ErrorTypeGraph) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Graph store unavailable"})
				return
			}
			log.Error("Failed to find matches", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find matches"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"matches": result.Matches})
	})

	// Project a profile into the graph
	router.POST("/seed/user/:userId", func(c *gin.Context) {
		userID := c.Param("userId")
		ctx := c.Request.Context()

		p, err := ingestSvc.Ingest(ctx, userID)
		if err != nil {
			switch {
			case apperrors.IsNotFound(err):
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found in profile store"})
			case apperrors.IsErrorType(err, apperrors.ErrorTypeGraph),
				apperrors.IsErrorType(err, apperrors.ErrorTypeProfile):
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable"})
			default:
				log.Error("Failed to ingest user", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest user"})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":   "User seeded into graph",
			"userId":    userID,
			"interests": p.Interests,
			"school":    p.School,
		})
	})

	// Profile routes
	router.GET("/profile/me", auth.RequireToken(), func(c *gin.Context) {
		ctx := c.Request.Context()

		p, err := profiles.Get(ctx, auth.UserID(c))
		if err != nil {
			if apperrors.IsNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
				return
			}
			log.Error("Failed to fetch profile", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
			return
		}

		c.JSON(http.StatusOK, p)
	})

	router.POST("/profile/onboard", auth.RequireToken(), func(c *gin.Context) {
		ctx := c.Request.Context()

		var req struct {
			DisplayName string            `json:"displayName" binding:"required"`
			Interests   []string          `json:"interests" binding:"required,min=1"`
			School      string            `json:"school"`
			Location    *profile.Location `json:"location"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		now := time.Now().UTC()
		p := &profile.Profile{
			UserID:      auth.UserID(c),
			DisplayName: req.DisplayName,
			Interests:   req.Interests,
			School:      req.School,
			Location:    req.Location,
			// Populated later by the speech analysis service
			CommunicationFingerprint: &profile.CommunicationFingerprint{},
			CreatedAt:                now,
			UpdatedAt:                now,
		}

		if err := profiles.Put(ctx, p); err != nil {
			log.Error("Failed to store profile", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store profile"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Profile created", "profile": p})
	})

	return router
}

func queryInt(c *gin.Context, key string, defaultValue int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultValue
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		requestID := uuid.NewString()
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", requestID),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		log.Info("HTTP Request", fields...)
	}
}
