package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cr-transcripts/pkg/db"
	"cr-transcripts/pkg/httpclient"
	"cr-transcripts/pkg/index"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.False(t, cfg.Update)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.True(t, cfg.IncludeNames())
	assert.Equal(t, DefaultURLRoot, cfg.URLRoot)
	assert.Equal(t, "index.html", cfg.Index.File)
	assert.Equal(t, IndexFormatHTML, cfg.Index.Format)
	assert.Equal(t, index.DefaultPattern(), cfg.FilePattern())
	assert.Equal(t, ".md", cfg.Output.Extension)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, httpclient.DefaultClient, cfg.ClientType())
	assert.Equal(t, db.DriverNone, cfg.Store.Driver)
}

func TestLoad_Flags(t *testing.T) {
	fs := newFlags(t, "-u", "-d", "raw", "-o", "out", "--exclude-names", "--url-root", "http://example.com/html/", "--store", "mongo")

	cfg, err := Load("", fs)
	require.NoError(t, err)

	assert.True(t, cfg.Update)
	assert.Equal(t, "raw", cfg.DataDir)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.False(t, cfg.IncludeNames())
	assert.Equal(t, "http://example.com/html", cfg.URLRoot)
	assert.Equal(t, db.DriverMongo, cfg.StoreOptions().Driver)
}

func TestLoad_FileEnvAndFlagPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crtranscripts.yaml")
	yaml := `
data_dir: from-file
output_dir: out-from-file
index:
  format: feed
pattern:
  prefix: ep
  extension: .htm
http:
  client: cloudflare
  timeout: 5s
store:
  driver: postgres
  postgres:
    dsn: postgres://localhost/crt
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("CRT_OUTPUT_DIR", "out-from-env")
	t.Setenv("CRT_LOG_LEVEL", "debug")

	fs := newFlags(t, "--data-dir", "from-flag")

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.DataDir)
	assert.Equal(t, "out-from-env", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, IndexFormatFeed, cfg.Index.Format)
	assert.Equal(t, index.Pattern{Prefix: "ep", Extension: ".htm"}, cfg.FilePattern())
	assert.Equal(t, httpclient.CloudflareClient, cfg.ClientType())
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "postgres://localhost/crt", cfg.StoreOptions().Postgres.DSN)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing data dir", func(c *Config) { c.DataDir = "" }, true},
		{"missing output dir", func(c *Config) { c.OutputDir = "" }, true},
		{"update without url root", func(c *Config) { c.Update = true; c.URLRoot = "" }, true},
		{"sitemap index format", func(c *Config) { c.Index.Format = IndexFormatSitemap }, false},
		{"bad index format", func(c *Config) { c.Index.Format = "json" }, true},
		{"bad store driver", func(c *Config) { c.Store.Driver = "sqlite" }, true},
		{"bad http client", func(c *Config) { c.HTTP.Client = "lynx" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{DataDir: "raw", OutputDir: "out", URLRoot: DefaultURLRoot}
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_FillsDefaults(t *testing.T) {
	c := &Config{DataDir: "raw", OutputDir: "out"}
	require.NoError(t, c.Validate())

	assert.Equal(t, IndexFormatHTML, c.Index.Format)
	assert.Equal(t, "index.html", c.Index.File)
	assert.Equal(t, index.DefaultPattern(), c.FilePattern())
	assert.Equal(t, ".md", c.Output.Extension)
}
