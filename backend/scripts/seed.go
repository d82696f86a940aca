package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/etoland/my-circle/backend/internal/graph"
	"github.com/etoland/my-circle/backend/internal/ingest"
	"github.com/etoland/my-circle/backend/internal/profile"
	"github.com/etoland/my-circle/backend/pkg/config"
	"github.com/etoland/my-circle/backend/pkg/logger"
)

type sampleProfile struct {
	displayName string
	city        string
	country     string
	school      string
	interests   []string
	vibe        string
}

var sampleProfiles = []sampleProfile{
	{"Alma", "Stockholm", "Sweden", "KTH", []string{"Chess", "Hiking", "Jazz"}, "thoughtful"},
	{"Benny", "Gothenburg", "Sweden", "Chalmers", []string{"Chess", "Hiking"}, "upbeat"},
	{"Cleo", "Oslo", "Norway", "", []string{"Chess"}, ""},
	{"Dana", "Copenhagen", "Denmark", "DTU", []string{"Chess", "Hiking", "Jazz", "Sailing"}, "dry"},
}

func main() {
	skipSamples := flag.Bool("constraints-only", false, "Only ensure graph constraints, skip sample data")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

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
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	repo := graph.NewRepository(driver)

	log.Info("Ensuring graph constraints...")
	if err := repo.EnsureConstraints(ctx); err != nil {
		log.Fatal("Failed to ensure constraints", zap.Error(err))
	}

	if *skipSamples {
		log.Info("Constraints ensured, skipping sample data")
		return
	}

	// Initialize DynamoDB client
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatal("Failed to load AWS configuration", zap.Error(err))
	}
	profiles := profile.NewStore(dynamodb.NewFromConfig(awsCfg), cfg.UsersTableName)
	ingestSvc := ingest.NewService(repo, profiles)

	now := time.Now().UTC()
	for _, sp := range sampleProfiles {
		userID := uuid.NewString()

		p := &profile.Profile{
			UserID:      userID,
			DisplayName: sp.displayName,
			Location:    &profile.Location{City: sp.city, Country: sp.country},
			School:      sp.school,
			Interests:   sp.interests,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if sp.vibe != "" {
			p.CommunicationFingerprint = &profile.CommunicationFingerprint{Vibe: sp.vibe}
		}

		if err := profiles.Put(ctx, p); err != nil {
			log.Fatal("Failed to store sample profile", zap.String("display_name", sp.displayName), zap.Error(err))
		}
		if _, err := ingestSvc.Ingest(ctx, userID); err != nil {
			log.Fatal("Failed to ingest sample profile", zap.String("display_name", sp.displayName), zap.Error(err))
		}

		log.Info("Sample profile seeded",
			zap.String("user_id", userID),
			zap.String("display_name", sp.displayName),
			zap.Int("interests", len(sp.interests)),
		)
	}

	log.Info("Seeding complete", zap.Int("profiles", len(sampleProfiles)))
}
