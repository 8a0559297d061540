package dbclient

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"jsonadaptor/internal/adaptor"
	"jsonadaptor/internal/domain"
	"jsonadaptor/internal/jsonvalue"
)

// MongoConnector implements Connector for MongoDB and also serves as a
// document source.
type MongoConnector struct {
	client *mongo.Client
	dbName string
}

// NewMongoConnector connects to the server described by conn.
func NewMongoConnector(conn *domain.DatabaseConnection, password string) (*MongoConnector, error) {
	uri := buildMongoURI(conn, password)
	dbName := conn.Database
	if dbName == "" {
		dbName = databaseFromURI(uri)
	}

	logURI := uri
	if password != "" {
		logURI = strings.ReplaceAll(logURI, password, "***")
	}
	slog.Debug("connecting to mongodb", slog.String("uri", logURI), slog.String("database", dbName))

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &MongoConnector{client: client, dbName: dbName}, nil
}

// buildMongoURI uses conn.Host directly when it already is a connection
// string, filling in the password placeholder and the database path.
// Otherwise the URI is assembled from host and port.
func buildMongoURI(conn *domain.DatabaseConnection, password string) string {
	if strings.HasPrefix(conn.Host, "mongodb+srv://") || strings.HasPrefix(conn.Host, "mongodb://") {
		uri := conn.Host
		if password != "" {
			uri = strings.ReplaceAll(uri, "<password>", password)
			uri = strings.ReplaceAll(uri, "<db_password>", password)
		}
		if conn.Database != "" && databaseFromURI(uri) == "" {
			if idx := strings.Index(uri, "?"); idx != -1 {
				uri = strings.TrimRight(uri[:idx], "/") + "/" + conn.Database + uri[idx:]
			} else {
				uri = strings.TrimRight(uri, "/") + "/" + conn.Database
			}
		}
		return uri
	}

	port := conn.Port
	if port == 0 {
		port = 27017
	}
	var uri string
	if conn.Username != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%d", conn.Username, password, conn.Host, port)
	} else {
		uri = fmt.Sprintf("mongodb://%s:%d", conn.Host, port)
	}

	// authSource, replicaSet, etc.
	if conn.ExtraJSON != "" && conn.ExtraJSON != "{}" {
		var extras map[string]string
		if json.Unmarshal([]byte(conn.ExtraJSON), &extras) == nil && len(extras) > 0 {
			keys := make([]string, 0, len(extras))
			for k := range extras {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			params := make([]string, 0, len(keys))
			for _, k := range keys {
				params = append(params, k+"="+extras[k])
			}
			uri += "/?" + strings.Join(params, "&")
		}
	}
	return uri
}

// databaseFromURI extracts the path segment of user:pass@host/DB?params.
func databaseFromURI(uri string) string {
	rest := uri
	for _, prefix := range []string{"mongodb+srv://", "mongodb://"} {
		if strings.HasPrefix(rest, prefix) {
			rest = rest[len(prefix):]
			break
		}
	}
	if at := strings.LastIndex(rest, "@"); at != -1 {
		rest = rest[at+1:]
	}
	slash := strings.Index(rest, "/")
	if slash == -1 {
		return ""
	}
	path := rest[slash+1:]
	if q := strings.Index(path, "?"); q != -1 {
		path = path[:q]
	}
	return path
}

func (m *MongoConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

// ImportColumns is not supported: collections have no fixed columns, so
// the schema comes from the mapping.
func (m *MongoConnector) ImportColumns(ctx context.Context, table string) ([]adaptor.Column, error) {
	return nil, fmt.Errorf("mongodb collection %q: %w", table, ErrNoIntrospection)
}

// InsertRows stores one document per row, fields in column order. Null
// slots are omitted. The insert is ordered: on failure no rows after the
// failing one are written.
func (m *MongoConnector) InsertRows(ctx context.Context, table string, columns []adaptor.Column, rows []adaptor.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	docs := make([]any, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(columns))
		}
		docs = append(docs, RowDocument(columns, row))
	}

	res, err := m.client.Database(m.dbName).Collection(table).InsertMany(ctx, docs)
	if err != nil {
		n := 0
		if res != nil {
			n = len(res.InsertedIDs)
		}
		return n, fmt.Errorf("insert into %s: %w", table, err)
	}
	return len(res.InsertedIDs), nil
}

// ReadDocuments streams the documents of collection matching filter to
// fn, converted to value trees. A nil filter matches everything.
func (m *MongoConnector) ReadDocuments(ctx context.Context, collection string, filter bson.D, fn func(jsonvalue.Object) error) error {
	if filter == nil {
		filter = bson.D{}
	}
	cursor, err := m.client.Database(m.dbName).Collection(collection).Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("decode document: %w", err)
		}
		if err := fn(jsonvalue.FromBSON(doc)); err != nil {
			return err
		}
	}
	return cursor.Err()
}

func (m *MongoConnector) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// RowDocument converts row into a BSON document keyed by column name.
func RowDocument(columns []adaptor.Column, row adaptor.Row) bson.D {
	doc := make(bson.D, 0, len(columns))
	for i, col := range columns {
		if row[i] == nil {
			continue
		}
		doc = append(doc, bson.E{Key: col.Name, Value: bsonValue(row[i])})
	}
	return doc
}

func bsonValue(v any) any {
	switch x := v.(type) {
	case adaptor.Temporal:
		return bson.NewDateTimeFromTime(x.Time())
	case uint8:
		return int32(x)
	case uint16:
		return int32(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case int8:
		return int32(x)
	case int16:
		return int32(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

// ParseFilter reads a MongoDB Extended JSON filter such as
// {"createdAt": {"$gte": {"$date": "2024-01-01T00:00:00Z"}}}.
func ParseFilter(raw string) (bson.D, error) {
	if strings.TrimSpace(raw) == "" {
		return bson.D{}, nil
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(raw), false, &doc); err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	return doc, nil
}
