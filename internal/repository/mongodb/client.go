package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lfmachado/rebanho/internal/config"
)

// Client wraps the shared MongoDB connection used by the repositories.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens and verifies the MongoDB connection.
func Connect(ctx context.Context, cfg config.MongoDBConfig) (*Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database(cfg.DBName),
	}, nil
}

// Database exposes the underlying database handle for the repositories.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Close closes the MongoDB connection.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
