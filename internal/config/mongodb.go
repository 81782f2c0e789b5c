package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrMongoURIRequired is returned outside test mode when MONGODB_URI is unset
var ErrMongoURIRequired = errors.New("MONGODB_URI environment variable is required when not in test mode")

type MongoConfig struct {
	URI      string
	Database string
	TestMode bool
}

func NewMongoConfig() (*MongoConfig, error) {
	// Check if we're in test mode
	testMode := strings.ToLower(os.Getenv("TEST_MODE")) == "true"

	uri := getEnv("MONGODB_URI", "")
	if uri == "" && !testMode {
		return nil, ErrMongoURIRequired
	}

	return &MongoConfig{
		URI:      uri,
		Database: getEnv("MONGODB_DATABASE", "olex"),
		TestMode: testMode,
	}, nil
}

// UseMemory reports whether reports should stay in process memory
func (c *MongoConfig) UseMemory() bool {
	return c.URI == "" && c.TestMode
}

func ConnectMongoDB(cfg *MongoConfig) (*mongo.Database, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("MongoDB URI not provided")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logrus.WithField("database", cfg.Database).Info("connecting to MongoDB")

	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the database
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logrus.WithField("database", cfg.Database).Info("connected to MongoDB")
	return client.Database(cfg.Database), nil
}
