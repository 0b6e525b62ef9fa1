package db

import (
	"context"
	"fmt"
	"time"

	"github.com/alexbilevskiy/tgfolders/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func NewClient(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	rb := bson.NewRegistryBuilder()

	registry := rb.Build()
	clientOptions := options.Client().ApplyURI(cfg.Mongo["uri"]).SetRegistry(registry)

	mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(mctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(mctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, nil
}
