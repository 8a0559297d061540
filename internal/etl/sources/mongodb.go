package sources

import (
	"context"
	"fmt"

	"jsonadaptor/internal/dbclient"
	"jsonadaptor/internal/domain"
	"jsonadaptor/internal/etl"
	"jsonadaptor/internal/jsonvalue"
)

// ── MongoDB Source ─────────────────────────────────────────
// Scans a collection; every matching document is one import document.

type mongoSource struct{}

func init() { etl.RegisterSource(&mongoSource{}) }

func (s *mongoSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{
		Type:  "mongodb",
		Label: "MongoDB Collection",
		ConfigFields: []etl.ConfigField{
			{Key: "uri", Label: "Connection URI", Type: "string", Required: true, Help: "mongodb:// or mongodb+srv:// URI"},
			{Key: "password", Label: "Password", Type: "password", Help: "Replaces <password> in the URI"},
			{Key: "database", Label: "Database", Type: "string", Help: "Defaults to the database named in the URI"},
			{Key: "collection", Label: "Collection", Type: "string", Required: true},
			{Key: "filter", Label: "Filter", Type: "textarea", Help: "Extended JSON query filter, e.g. {\"status\": \"new\"}"},
		},
	}
}

func (s *mongoSource) Read(ctx context.Context, cfg etl.SourceConfig) (<-chan etl.Document, <-chan error) {
	out := make(chan etl.Document, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		if err := readCollection(ctx, cfg, out); err != nil {
			errCh <- err
		}
	}()

	return out, errCh
}

func readCollection(ctx context.Context, cfg etl.SourceConfig, out chan<- etl.Document) error {
	filter, err := dbclient.ParseFilter(cfg.String("filter"))
	if err != nil {
		return err
	}
	conn, err := dbclient.NewMongoConnector(&domain.DatabaseConnection{
		Driver:   domain.DatabaseDriverMongoDB,
		Host:     cfg.String("uri"),
		Database: cfg.String("database"),
	}, cfg.String("password"))
	if err != nil {
		return err
	}
	defer conn.Close()

	collection := cfg.String("collection")
	n := 0
	return conn.ReadDocuments(ctx, collection, filter, func(obj jsonvalue.Object) error {
		n++
		origin := fmt.Sprintf("%s#%d", collection, n)
		if id, ok := obj.Get("_id"); ok {
			origin = collection + "/" + id.Text()
		}
		select {
		case out <- etl.Document{Origin: origin, Value: obj}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}
