package db

import (
	"context"
	"errors"
	"fmt"
)

const (
	DriverNone     = ""
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSupabase = "supabase"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// MongoOptions selects the MongoDB deployment and collection.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// Options configures Open.
type Options struct {
	Driver   string
	Mongo    MongoOptions
	Postgres PostgresConfig
	Supabase SupabaseConfig
}

// Open connects the store selected by opts.Driver. DriverNone returns a nil Store
// and no error: persistence is optional.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverNone:
		return nil, nil

	case DriverMongo:
		store, err := ConnectMongoStore(ctx, opts.Mongo)
		if err != nil {
			return nil, err
		}
		return store, nil

	case DriverPostgres:
		client := NewPostgresClient(opts.Postgres)
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		store, err := openSQLStore(ctx, client)
		if err != nil {
			return nil, err
		}
		return store, nil

	case DriverSupabase:
		client := NewSupabaseClient(opts.Supabase)
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		if client.SDKOnly() {
			return NewRESTStore(client), nil
		}
		store, err := openSQLStore(ctx, client)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// ConnectMongoStore creates a MongoStore and verifies the connection. The client
// is disconnected again when verification fails.
func ConnectMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	store := NewMongoStore(opts.URI, opts.Database, opts.Collection)
	if err := connectOrClose(ctx, store); err != nil {
		return nil, fmt.Errorf("connect mongo store: %w", err)
	}
	return store, nil
}

func connectOrClose(ctx context.Context, store *MongoStore) error {
	if err := store.Connect(ctx); err != nil {
		_ = store.Close(ctx)
		return err
	}
	return nil
}

func openSQLStore(ctx context.Context, pg DBProvider) (*SQLStore, error) {
	store := NewSQLStore(pg)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}
	return store, nil
}
