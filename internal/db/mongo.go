package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrConnect marks a failure to reach the database at startup.
var ErrConnect = errors.New("database unreachable")

type MongoOptions struct {
	URI            string
	ConnectTimeout time.Duration
	SocketTimeout  time.Duration
}

// ConnectMongo dials MongoDB and waits for a primary, giving up once
// ConnectTimeout elapses. Errors wrap ErrConnect.
func ConnectMongo(ctx context.Context, opts MongoOptions) (*mongo.Client, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("%w: no connection string", ErrConnect)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ConnectTimeout).
		SetSocketTimeout(opts.SocketTimeout).
		SetRetryWrites(true).
		SetServerMonitor(serverMonitor())

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	slog.Info("database connected", "driver", "mongodb")
	return client, nil
}

// serverMonitor logs connectivity changes after startup. The selected
// backend is not swapped when the connection drops.
func serverMonitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			slog.Warn("mongodb heartbeat failed", "error", e.Failure, "connection_id", e.ConnectionID)
		},
		ServerClosed: func(e *event.ServerClosedEvent) {
			slog.Warn("mongodb disconnected", "address", e.Address.String())
		},
	}
}
