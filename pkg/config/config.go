// Package config loads crtranscripts settings from defaults, an optional YAML
// file, CRT_* environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cr-transcripts/pkg/db"
	"cr-transcripts/pkg/httpclient"
	"cr-transcripts/pkg/index"
)

const (
	EnvPrefix = "CRT"

	DefaultURLRoot   = "https://www.kryogenix.org/crsearch/html"
	DefaultDataDir   = "data/raw/cr_transcripts/"
	DefaultOutputDir = "data/processed/cr_transcripts/"

	IndexFormatHTML    = "html"
	IndexFormatFeed    = "feed"
	IndexFormatSitemap = "sitemap"
)

type Config struct {
	Update       bool   `mapstructure:"update"`
	DataDir      string `mapstructure:"data_dir"`
	OutputDir    string `mapstructure:"output_dir"`
	ExcludeNames bool   `mapstructure:"exclude_names"`
	URLRoot      string `mapstructure:"url_root"`

	Index   IndexConfig   `mapstructure:"index"`
	Pattern PatternConfig `mapstructure:"pattern"`
	Output  OutputConfig  `mapstructure:"output"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
}

type IndexConfig struct {
	// File is the name of the index document, both remotely and in DataDir.
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"`
}

type PatternConfig struct {
	Prefix    string `mapstructure:"prefix"`
	Extension string `mapstructure:"extension"`
}

type OutputConfig struct {
	Extension string `mapstructure:"extension"`
}

type HTTPConfig struct {
	Client  string        `mapstructure:"client"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	Driver   string         `mapstructure:"driver"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type SupabaseConfig struct {
	URL              string `mapstructure:"url"`
	Key              string `mapstructure:"key"`
	Password         string `mapstructure:"password"`
	ConnectionString string `mapstructure:"connection_string"`
}

var defaults = map[string]interface{}{
	"update":                           false,
	"data_dir":                         DefaultDataDir,
	"output_dir":                       DefaultOutputDir,
	"exclude_names":                    false,
	"url_root":                         DefaultURLRoot,
	"index.file":                       "index.html",
	"index.format":                     IndexFormatHTML,
	"pattern.prefix":                   index.DefaultPrefix,
	"pattern.extension":                index.DefaultExtension,
	"output.extension":                 ".md",
	"http.client":                      string(httpclient.DefaultClient),
	"http.timeout":                     "30s",
	"log.level":                        "info",
	"log.format":                       "console",
	"store.driver":                     db.DriverNone,
	"store.mongo.uri":                  "mongodb://localhost:27017",
	"store.mongo.database":             "crtranscripts",
	"store.mongo.collection":           "transcripts",
	"store.postgres.dsn":               "",
	"store.supabase.url":               "",
	"store.supabase.key":               "",
	"store.supabase.password":          "",
	"store.supabase.connection_string": "",
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"update":        "update",
	"data-dir":      "data_dir",
	"output-dir":    "output_dir",
	"exclude-names": "exclude_names",
	"url-root":      "url_root",
	"index-format":  "index.format",
	"log-level":     "log.level",
	"log-format":    "log.format",
	"store":         "store.driver",
}

// RegisterFlags defines the flags Load understands on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "Path to a YAML config file")
	fs.BoolP("update", "u", false, "Update any transcripts that are available online")
	fs.StringP("data-dir", "d", DefaultDataDir, "Directory to store transcript data")
	fs.StringP("output-dir", "o", DefaultOutputDir, "Directory to store processed transcript data")
	fs.Bool("exclude-names", false, "Exclude speaker names from output")
	fs.String("url-root", DefaultURLRoot, "Base URL the index and transcripts are downloaded from")
	fs.String("index-format", IndexFormatHTML, "Format of the index document (html, feed or sitemap)")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.String("log-format", "console", "Log format (console or json)")
	fs.String("store", db.DriverNone, "Catalog store driver (mongo, postgres, supabase); empty disables it")
}

// Load builds a Config. path may be empty; fs may be nil.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Example: CRT_STORE_MONGO_URI
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.Update && c.URLRoot == "" {
		return fmt.Errorf("url_root is required when update is set")
	}

	switch c.Index.Format {
	case IndexFormatHTML, IndexFormatFeed, IndexFormatSitemap:
	case "":
		c.Index.Format = IndexFormatHTML
	default:
		return fmt.Errorf("index.format must be %q, %q or %q, got %q", IndexFormatHTML, IndexFormatFeed, IndexFormatSitemap, c.Index.Format)
	}

	switch c.Store.Driver {
	case db.DriverNone, db.DriverMongo, db.DriverPostgres, db.DriverSupabase:
	default:
		return fmt.Errorf("%w: %q", db.ErrUnknownDriver, c.Store.Driver)
	}

	if _, err := httpclient.ParseClientType(c.HTTP.Client); err != nil {
		return err
	}

	c.URLRoot = strings.TrimRight(c.URLRoot, "/")
	if c.Index.File == "" {
		c.Index.File = "index.html"
	}
	if c.Pattern.Prefix == "" {
		c.Pattern.Prefix = index.DefaultPrefix
	}
	if c.Pattern.Extension == "" {
		c.Pattern.Extension = index.DefaultExtension
	}
	if c.Output.Extension == "" {
		c.Output.Extension = ".md"
	}
	if c.HTTP.Timeout < 0 {
		c.HTTP.Timeout = 0
	}

	return nil
}

// IncludeNames reports whether rendered output carries speaker prefixes.
func (c *Config) IncludeNames() bool {
	return !c.ExcludeNames
}

func (c *Config) FilePattern() index.Pattern {
	return index.Pattern{Prefix: c.Pattern.Prefix, Extension: c.Pattern.Extension}
}

func (c *Config) ClientType() httpclient.ClientType {
	ct, _ := httpclient.ParseClientType(c.HTTP.Client)
	return ct
}

// StoreOptions converts the store section into db.Open options.
func (c *Config) StoreOptions() db.Options {
	return db.Options{
		Driver: c.Store.Driver,
		Mongo: db.MongoOptions{
			URI:        c.Store.Mongo.URI,
			Database:   c.Store.Mongo.Database,
			Collection: c.Store.Mongo.Collection,
		},
		Postgres: db.PostgresConfig{DSN: c.Store.Postgres.DSN},
		Supabase: db.SupabaseConfig{
			ConnectionString: c.Store.Supabase.ConnectionString,
			SupabaseURL:      c.Store.Supabase.URL,
			SupabaseKey:      c.Store.Supabase.Key,
			Password:         c.Store.Supabase.Password,
		},
	}
}
