package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultConnectTimeout = 10 * time.Second

// Options selects the mongo deployment and database.
type Options struct {
	URI      string
	Database string
	User     string
	Password string
}

// Connect opens a client, pings the primary and returns the target database.
func Connect(ctx context.Context, opts Options) (*mongo.Client, *mongo.Database, error) {
	if strings.TrimSpace(opts.URI) == "" {
		return nil, nil, errors.New("mongo: uri is empty")
	}
	if strings.TrimSpace(opts.Database) == "" {
		return nil, nil, errors.New("mongo: database is empty")
	}

	clientOptions := options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(defaultConnectTimeout)
	if opts.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   opts.User,
			Password:   opts.Password,
			AuthSource: opts.Database,
		})
	}

	connectCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo: ping: %w", err)
	}

	return client, client.Database(opts.Database), nil
}
