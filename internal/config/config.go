// Package config assembles the importer settings from the environment and
// command-line flags. Flags win over environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"

	"jsonadaptor/internal/domain"
)

// Config holds everything needed to run an import. ENV names are listed
// in the struct tags.
type Config struct {
	Mapping string `env:"JSONADAPTOR_MAPPING"`
	Source  string `env:"JSONADAPTOR_SOURCE,default=json_file"`

	Driver   string `env:"JSONADAPTOR_DRIVER,default=sqlite"`
	DSN      string `env:"JSONADAPTOR_DSN"`
	Port     int    `env:"JSONADAPTOR_PORT"`
	Database string `env:"JSONADAPTOR_DATABASE"`
	User     string `env:"JSONADAPTOR_USER"`
	Password string `env:"JSONADAPTOR_PASSWORD"`
	SSLMode  string `env:"JSONADAPTOR_SSLMODE"`
	Table    string `env:"JSONADAPTOR_TABLE"`

	// MongoURI and MongoCollection locate the documents read by the
	// mongodb source.
	MongoURI        string `env:"JSONADAPTOR_MONGO_URI"`
	MongoCollection string `env:"JSONADAPTOR_MONGO_COLLECTION"`
	MongoFilter     string `env:"JSONADAPTOR_MONGO_FILTER"`

	// DataPath selects the documents inside each input, e.g. "data.items".
	DataPath  string `env:"JSONADAPTOR_DATA_PATH"`
	BatchSize int    `env:"JSONADAPTOR_BATCH_SIZE,default=500"`

	Watch    string        `env:"JSONADAPTOR_WATCH"`
	Schedule string        `env:"JSONADAPTOR_SCHEDULE"`
	RunLog   string        `env:"JSONADAPTOR_RUNLOG"`
	Timeout  time.Duration `env:"JSONADAPTOR_TIMEOUT,default=5m"`

	SymmetricInt32 bool   `env:"JSONADAPTOR_SYMMETRIC_INT32"`
	LogLevel       string `env:"JSONADAPTOR_LOG_LEVEL,default=info"`

	// Inputs are the positional arguments: files or directories to import.
	Inputs []string
}

// FromEnv decodes the JSONADAPTOR_* variables. Unset variables keep their
// defaults.
func FromEnv() (Config, error) {
	var c Config
	if err := envdecode.Decode(&c); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode env: %w", err)
	}
	return c, nil
}

// Load reads the environment and then applies args on top.
func Load(name string, args []string, output io.Writer) (Config, error) {
	c, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	if err := c.ParseFlags(name, args, output); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// ParseFlags overrides c with any flags present in args.
func (c *Config) ParseFlags(name string, args []string, output io.Writer) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&c.Mapping, "mapping", c.Mapping, "column mapping file (.ini, .properties, .yaml)")
	fs.StringVar(&c.Source, "source", c.Source, "source type: json_file, json_dir, http or mongodb")
	fs.StringVar(&c.Driver, "driver", c.Driver, "destination driver: sqlite, mysql, postgres, mongodb or stdout")
	fs.StringVar(&c.DSN, "dsn", c.DSN, "database host, file path or connection URI")
	fs.IntVar(&c.Port, "port", c.Port, "database port")
	fs.StringVar(&c.Database, "database", c.Database, "database name")
	fs.StringVar(&c.User, "user", c.User, "database user")
	fs.StringVar(&c.SSLMode, "sslmode", c.SSLMode, "database SSL mode")
	fs.StringVar(&c.Table, "table", c.Table, "destination table or collection")
	fs.StringVar(&c.MongoURI, "mongo-uri", c.MongoURI, "MongoDB URI read by the mongodb source")
	fs.StringVar(&c.MongoCollection, "collection", c.MongoCollection, "collection read by the mongodb source")
	fs.StringVar(&c.MongoFilter, "filter", c.MongoFilter, "extended JSON filter for the mongodb source")
	fs.StringVar(&c.DataPath, "data-path", c.DataPath, "dotted path to the documents inside each input")
	fs.IntVar(&c.BatchSize, "batch-size", c.BatchSize, "rows written per destination batch")
	fs.StringVar(&c.Watch, "watch", c.Watch, "directory to watch for new JSON files")
	fs.StringVar(&c.Schedule, "schedule", c.Schedule, "cron expression for periodic imports")
	fs.StringVar(&c.RunLog, "runlog", c.RunLog, "sqlite file recording import runs")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "maximum duration of a single run")
	fs.BoolVar(&c.SymmetricInt32, "symmetric-int32", c.SymmetricInt32, "also enforce the lower INT32 bound")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		c.Inputs = fs.Args()
	}
	return nil
}

// Validate checks that the settings describe a runnable import.
func (c *Config) Validate() error {
	if c.Mapping == "" {
		return errors.New("config: a mapping file is required")
	}
	if c.Driver != "stdout" && c.Table == "" {
		return errors.New("config: a destination table is required")
	}
	if c.Driver != "stdout" && c.DSN == "" {
		return errors.New("config: a database DSN is required")
	}
	switch c.Source {
	case "json_file", "json_dir", "http":
		if len(c.Inputs) == 0 && c.Watch == "" {
			return errors.New("config: no input files given")
		}
	case "mongodb":
		if c.MongoURI == "" || c.MongoCollection == "" {
			return errors.New("config: the mongodb source needs a URI and a collection")
		}
	}
	return nil
}

// Connection describes the destination database.
func (c *Config) Connection() *domain.DatabaseConnection {
	return &domain.DatabaseConnection{
		Name:     c.Table,
		Driver:   domain.DatabaseDriver(c.Driver),
		Host:     c.DSN,
		Port:     c.Port,
		Database: c.Database,
		Username: c.User,
		SSLMode:  c.SSLMode,
	}
}

// Level maps LogLevel onto a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
