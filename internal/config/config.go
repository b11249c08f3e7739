package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"jobextract/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Input      InputConfig
	Extract    ExtractConfig
	Sink       SinkConfig
	DB         DBConfig
	S3         S3Config
	Kafka      KafkaConfig
	Checkpoint CheckpointConfig
	Email      EmailConfig
	Auth       AuthConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// InputConfig holds the ingest worker's discovery and batching settings.
type InputConfig struct {
	TextDirs        []string      `mapstructure:"text_dirs"`
	JSONDirs        []string      `mapstructure:"json_dirs"`
	TriggerInterval time.Duration `mapstructure:"trigger_interval"`
	Debounce        time.Duration `mapstructure:"debounce"`
	InitialScan     bool          `mapstructure:"initial_scan"`
	MaxDocumentMB   int           `mapstructure:"max_document_mb"`
	Concurrency     int           `mapstructure:"concurrency"`
}

// MaxDocumentBytes converts MaxDocumentMB to bytes.
func (i *InputConfig) MaxDocumentBytes() int {
	return i.MaxDocumentMB << 20
}

// ExtractConfig holds extraction engine settings.
type ExtractConfig struct {
	CueFile       string `mapstructure:"cue_file"`
	HeaderPattern string `mapstructure:"header_pattern"`
}

// SinkConfig selects the output sinks.
type SinkConfig struct {
	Kinds     []domain.SinkKind `mapstructure:"kinds"`
	OutputDir string            `mapstructure:"output_dir"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings. Empty prefixes disable the matching
// input or output.
type S3Config struct {
	Region       string `mapstructure:"region"`
	Bucket       string `mapstructure:"bucket"`
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	TextPrefix   string `mapstructure:"text_prefix"`
	JSONPrefix   string `mapstructure:"json_prefix"`
	OutputPrefix string `mapstructure:"output_prefix"`
}

// Enabled reports whether any S3 input is configured.
func (s *S3Config) Enabled() bool {
	return s.Bucket != "" && (s.TextPrefix != "" || s.JSONPrefix != "")
}

// KafkaConfig holds the Kafka sink settings.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// CheckpointConfig selects where processed-file checkpoints are kept.
type CheckpointConfig struct {
	Driver        string `mapstructure:"driver"`
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	KeyPrefix     string `mapstructure:"key_prefix"`
}

// EmailConfig holds batch report delivery settings.
type EmailConfig struct {
	Provider    string   `mapstructure:"provider"`
	Region      string   `mapstructure:"region"`
	FromAddress string   `mapstructure:"from_address"`
	FromName    string   `mapstructure:"from_name"`
	ToAddresses []string `mapstructure:"to_addresses"`
}

// AuthConfig holds API bearer token settings. An empty secret disables auth.
type AuthConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// Load reads configuration from environment variables with the JOBEXTRACT_
// prefix, optionally layered over the YAML file named by
// JOBEXTRACT_CONFIG_FILE.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JOBEXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Input defaults
	v.SetDefault("input.text_dirs", "")
	v.SetDefault("input.json_dirs", "")
	v.SetDefault("input.trigger_interval", "10s")
	v.SetDefault("input.debounce", "500ms")
	v.SetDefault("input.initial_scan", true)
	v.SetDefault("input.max_document_mb", 16)
	v.SetDefault("input.concurrency", 4)

	// Extract defaults
	v.SetDefault("extract.cue_file", "")
	v.SetDefault("extract.header_pattern", `Job Posting: job\d+\.txt`)

	// Sink defaults
	v.SetDefault("sink.kinds", "console")
	v.SetDefault("sink.output_dir", "output")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "jobextract")
	v.SetDefault("db.password", "jobextract_secret")
	v.SetDefault("db.name", "jobextract_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.text_prefix", "")
	v.SetDefault("s3.json_prefix", "")
	v.SetDefault("s3.output_prefix", "exports/")

	// Kafka defaults
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "job-postings")

	// Checkpoint defaults
	v.SetDefault("checkpoint.driver", "sqlite")
	v.SetDefault("checkpoint.path", ".jobextract/checkpoints.db")
	v.SetDefault("checkpoint.redis_addr", "localhost:6379")
	v.SetDefault("checkpoint.redis_password", "")
	v.SetDefault("checkpoint.redis_db", 0)
	v.SetDefault("checkpoint.key_prefix", "jobextract:seen:")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@jobextract.local")
	v.SetDefault("email.from_name", "jobextract")
	v.SetDefault("email.to_addresses", "")

	// Auth defaults
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "jobextract")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "JOBEXTRACT_SERVER_PORT",
		"server.read_timeout":       "JOBEXTRACT_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "JOBEXTRACT_SERVER_WRITE_TIMEOUT",
		"server.environment":        "JOBEXTRACT_SERVER_ENVIRONMENT",
		"log.level":                 "JOBEXTRACT_LOG_LEVEL",
		"log.format":                "JOBEXTRACT_LOG_FORMAT",
		"input.text_dirs":           "JOBEXTRACT_INPUT_TEXT_DIRS",
		"input.json_dirs":           "JOBEXTRACT_INPUT_JSON_DIRS",
		"input.trigger_interval":    "JOBEXTRACT_INPUT_TRIGGER_INTERVAL",
		"input.debounce":            "JOBEXTRACT_INPUT_DEBOUNCE",
		"input.initial_scan":        "JOBEXTRACT_INPUT_INITIAL_SCAN",
		"input.max_document_mb":     "JOBEXTRACT_INPUT_MAX_DOCUMENT_MB",
		"input.concurrency":         "JOBEXTRACT_INPUT_CONCURRENCY",
		"extract.cue_file":          "JOBEXTRACT_EXTRACT_CUE_FILE",
		"extract.header_pattern":    "JOBEXTRACT_EXTRACT_HEADER_PATTERN",
		"sink.kinds":                "JOBEXTRACT_SINK_KINDS",
		"sink.output_dir":           "JOBEXTRACT_SINK_OUTPUT_DIR",
		"db.host":                   "JOBEXTRACT_DB_HOST",
		"db.port":                   "JOBEXTRACT_DB_PORT",
		"db.user":                   "JOBEXTRACT_DB_USER",
		"db.password":               "JOBEXTRACT_DB_PASSWORD",
		"db.name":                   "JOBEXTRACT_DB_NAME",
		"db.sslmode":                "JOBEXTRACT_DB_SSLMODE",
		"db.max_open":               "JOBEXTRACT_DB_MAX_OPEN",
		"db.max_idle":               "JOBEXTRACT_DB_MAX_IDLE",
		"s3.region":                 "JOBEXTRACT_S3_REGION",
		"s3.bucket":                 "JOBEXTRACT_S3_BUCKET",
		"s3.endpoint":               "JOBEXTRACT_S3_ENDPOINT",
		"s3.access_key":             "JOBEXTRACT_S3_ACCESS_KEY",
		"s3.secret_key":             "JOBEXTRACT_S3_SECRET_KEY",
		"s3.text_prefix":            "JOBEXTRACT_S3_TEXT_PREFIX",
		"s3.json_prefix":            "JOBEXTRACT_S3_JSON_PREFIX",
		"s3.output_prefix":          "JOBEXTRACT_S3_OUTPUT_PREFIX",
		"kafka.brokers":             "JOBEXTRACT_KAFKA_BROKERS",
		"kafka.topic":               "JOBEXTRACT_KAFKA_TOPIC",
		"checkpoint.driver":         "JOBEXTRACT_CHECKPOINT_DRIVER",
		"checkpoint.path":           "JOBEXTRACT_CHECKPOINT_PATH",
		"checkpoint.redis_addr":     "JOBEXTRACT_CHECKPOINT_REDIS_ADDR",
		"checkpoint.redis_password": "JOBEXTRACT_CHECKPOINT_REDIS_PASSWORD",
		"checkpoint.redis_db":       "JOBEXTRACT_CHECKPOINT_REDIS_DB",
		"checkpoint.key_prefix":     "JOBEXTRACT_CHECKPOINT_KEY_PREFIX",
		"email.provider":            "JOBEXTRACT_EMAIL_PROVIDER",
		"email.region":              "JOBEXTRACT_EMAIL_REGION",
		"email.from_address":        "JOBEXTRACT_EMAIL_FROM_ADDRESS",
		"email.from_name":           "JOBEXTRACT_EMAIL_FROM_NAME",
		"email.to_addresses":        "JOBEXTRACT_EMAIL_TO_ADDRESSES",
		"auth.secret":               "JOBEXTRACT_AUTH_SECRET",
		"auth.issuer":               "JOBEXTRACT_AUTH_ISSUER",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if path := os.Getenv("JOBEXTRACT_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{}

	// Platforms that inject PORT win unless the server port is set explicitly.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("JOBEXTRACT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Input = InputConfig{
		TextDirs:        getList(v, "input.text_dirs"),
		JSONDirs:        getList(v, "input.json_dirs"),
		TriggerInterval: v.GetDuration("input.trigger_interval"),
		Debounce:        v.GetDuration("input.debounce"),
		InitialScan:     v.GetBool("input.initial_scan"),
		MaxDocumentMB:   v.GetInt("input.max_document_mb"),
		Concurrency:     v.GetInt("input.concurrency"),
	}
	if cfg.Input.MaxDocumentMB <= 0 {
		return nil, fmt.Errorf("input.max_document_mb must be positive, got %d", cfg.Input.MaxDocumentMB)
	}
	cfg.Extract = ExtractConfig{
		CueFile:       v.GetString("extract.cue_file"),
		HeaderPattern: v.GetString("extract.header_pattern"),
	}

	var kinds []domain.SinkKind
	for _, k := range getList(v, "sink.kinds") {
		kind := domain.SinkKind(strings.ToLower(k))
		if !domain.ValidSinkKinds[kind] {
			return nil, fmt.Errorf("unknown sink kind %q", k)
		}
		kinds = append(kinds, kind)
	}
	cfg.Sink = SinkConfig{
		Kinds:     kinds,
		OutputDir: v.GetString("sink.output_dir"),
	}

	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:       v.GetString("s3.region"),
		Bucket:       v.GetString("s3.bucket"),
		Endpoint:     v.GetString("s3.endpoint"),
		AccessKey:    v.GetString("s3.access_key"),
		SecretKey:    v.GetString("s3.secret_key"),
		TextPrefix:   v.GetString("s3.text_prefix"),
		JSONPrefix:   v.GetString("s3.json_prefix"),
		OutputPrefix: v.GetString("s3.output_prefix"),
	}
	cfg.Kafka = KafkaConfig{
		Brokers: getList(v, "kafka.brokers"),
		Topic:   v.GetString("kafka.topic"),
	}

	driver := strings.ToLower(v.GetString("checkpoint.driver"))
	if driver != "sqlite" && driver != "redis" {
		return nil, fmt.Errorf("unknown checkpoint driver %q", driver)
	}
	cfg.Checkpoint = CheckpointConfig{
		Driver:        driver,
		Path:          v.GetString("checkpoint.path"),
		RedisAddr:     v.GetString("checkpoint.redis_addr"),
		RedisPassword: v.GetString("checkpoint.redis_password"),
		RedisDB:       v.GetInt("checkpoint.redis_db"),
		KeyPrefix:     v.GetString("checkpoint.key_prefix"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		ToAddresses: getList(v, "email.to_addresses"),
	}
	cfg.Auth = AuthConfig{
		Secret: v.GetString("auth.secret"),
		Issuer: v.GetString("auth.issuer"),
	}

	return cfg, nil
}

// getList reads a comma-separated string, or a YAML list from a config file.
func getList(v *viper.Viper, key string) []string {
	var raw []string
	switch val := v.Get(key).(type) {
	case []any:
		for _, item := range val {
			raw = append(raw, fmt.Sprint(item))
		}
	case []string:
		raw = val
	default:
		raw = strings.Split(v.GetString(key), ",")
	}

	var out []string
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
