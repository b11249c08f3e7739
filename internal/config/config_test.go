package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobextract/internal/config"
	"jobextract/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.Input.TriggerInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Input.Debounce)
	assert.True(t, cfg.Input.InitialScan)
	assert.Equal(t, 16<<20, cfg.Input.MaxDocumentBytes())
	assert.Equal(t, 4, cfg.Input.Concurrency)
	assert.Empty(t, cfg.Input.TextDirs)
	assert.Equal(t, `Job Posting: job\d+\.txt`, cfg.Extract.HeaderPattern)
	assert.Equal(t, []domain.SinkKind{domain.SinkConsole}, cfg.Sink.Kinds)
	assert.Equal(t, "sqlite", cfg.Checkpoint.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Empty(t, cfg.Auth.Secret)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JOBEXTRACT_INPUT_TEXT_DIRS", "in/text, other ,,")
	t.Setenv("JOBEXTRACT_INPUT_JSON_DIRS", "in/json")
	t.Setenv("JOBEXTRACT_INPUT_TRIGGER_INTERVAL", "2s")
	t.Setenv("JOBEXTRACT_SINK_KINDS", "CSV,postgres")
	t.Setenv("JOBEXTRACT_CHECKPOINT_DRIVER", "redis")
	t.Setenv("JOBEXTRACT_EMAIL_TO_ADDRESSES", "ops@example.com,data@example.com")
	t.Setenv("JOBEXTRACT_S3_BUCKET", "postings")
	t.Setenv("JOBEXTRACT_S3_TEXT_PREFIX", "incoming/text/")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"in/text", "other"}, cfg.Input.TextDirs)
	assert.Equal(t, []string{"in/json"}, cfg.Input.JSONDirs)
	assert.Equal(t, 2*time.Second, cfg.Input.TriggerInterval)
	assert.Equal(t, []domain.SinkKind{domain.SinkCSV, domain.SinkPostgres}, cfg.Sink.Kinds)
	assert.Equal(t, "redis", cfg.Checkpoint.Driver)
	assert.Equal(t, []string{"ops@example.com", "data@example.com"}, cfg.Email.ToAddresses)
	assert.True(t, cfg.S3.Enabled())
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "9000")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Port)

	t.Setenv("JOBEXTRACT_SERVER_PORT", ":7000")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Port)
}

func TestLoad_RejectsUnknownSinkAndDriver(t *testing.T) {
	t.Setenv("JOBEXTRACT_SINK_KINDS", "console,parquet")
	_, err := config.Load()
	assert.ErrorContains(t, err, "parquet")

	t.Setenv("JOBEXTRACT_SINK_KINDS", "console")
	t.Setenv("JOBEXTRACT_CHECKPOINT_DRIVER", "etcd")
	_, err = config.Load()
	assert.ErrorContains(t, err, "etcd")
}

func TestLoad_RejectsNonPositiveDocumentLimit(t *testing.T) {
	for _, mb := range []string{"0", "-5"} {
		t.Setenv("JOBEXTRACT_INPUT_MAX_DOCUMENT_MB", mb)
		_, err := config.Load()
		assert.ErrorContains(t, err, "max_document_mb", mb)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "jobextract.yaml")
	yaml := `input:
  text_dirs: [data/text, more/text]
  concurrency: 8
sink:
  kinds: [xlsx, kafka]
kafka:
  brokers: [k1:9092, k2:9092]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("JOBEXTRACT_CONFIG_FILE", path)
	t.Setenv("JOBEXTRACT_INPUT_CONCURRENCY", "2")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"data/text", "more/text"}, cfg.Input.TextDirs)
	assert.Equal(t, 2, cfg.Input.Concurrency, "env wins over file")
	assert.Equal(t, []domain.SinkKind{domain.SinkXLSX, domain.SinkKafka}, cfg.Sink.Kinds)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("JOBEXTRACT_CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p@db:5433/n?sslmode=require", db.DSN())
}
