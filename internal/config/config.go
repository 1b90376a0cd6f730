package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
	Analyzer *analyzerConfig
	SMTP     *smtpConfig
	S3       *s3Config
}

type dbConfig struct {
	Type           string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname       string `envconfig:"DB_HOST" default:"localhost"`
	Port           string `envconfig:"DB_PORT" default:"5432"`
	Name           string `envconfig:"DB_NAME" default:"resumes"`
	User           string `envconfig:"DB_USER" default:"admin"`
	Password       string `envconfig:"DB_PASS" default:"adminpass"`
	ConnectRetries uint64 `envconfig:"DB_CONNECT_RETRIES" default:"5"`
	AutoMigrate    bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

type svcConfig struct {
	Address          string        `envconfig:"SERVICE_ADDRESS" default:":3443"`
	MetricsAddress   string        `envconfig:"METRICS_ADDRESS" default:":8080"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat        string        `envconfig:"LOG_FORMAT" default:"console"`
	MigrationFolder  string        `envconfig:"MIGRATIONS_FOLDER" default:""`
	MaxUploadSize    int64         `envconfig:"MAX_UPLOAD_SIZE" default:"10485760"`
	UploadRateLimit  float64       `envconfig:"UPLOAD_RATE_LIMIT" default:"1"`
	UploadRateBurst  int           `envconfig:"UPLOAD_RATE_BURST" default:"5"`
	TrustedProxies   []string      `envconfig:"TRUSTED_PROXIES"`
	AnalysisWorkers  int           `envconfig:"ANALYSIS_WORKERS" default:"4"`
	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	AllowedOrigins   []string      `envconfig:"ALLOWED_ORIGINS" default:"*"`
	EventsTopic      string        `envconfig:"EVENTS_TOPIC" default:"resume.analyzer.events"`
	EventsEnabled    bool          `envconfig:"EVENTS_ENABLED" default:"true"`
	ArchiveUploads   bool          `envconfig:"ARCHIVE_UPLOADS" default:"false"`
	UseRiverQueue    bool          `envconfig:"USE_RIVER_QUEUE" default:"true"`
	RiverQueueWorker int           `envconfig:"RIVER_QUEUE_WORKERS" default:"10"`
}

type analyzerConfig struct {
	Transport string        `envconfig:"ANALYZER_TRANSPORT" default:"process"`
	Command   string        `envconfig:"ANALYZER_COMMAND" default:"python3"`
	Args      []string      `envconfig:"ANALYZER_ARGS" default:"server/resume_service.py"`
	URL       string        `envconfig:"ANALYZER_URL" default:""`
	Timeout   time.Duration `envconfig:"ANALYZER_TIMEOUT" default:"5m"`
	// circuit breaker
	BreakerMaxRequests  uint32        `envconfig:"ANALYZER_BREAKER_MAX_REQUESTS" default:"1"`
	BreakerInterval     time.Duration `envconfig:"ANALYZER_BREAKER_INTERVAL" default:"60s"`
	BreakerTimeout      time.Duration `envconfig:"ANALYZER_BREAKER_TIMEOUT" default:"30s"`
	BreakerFailureRatio float64       `envconfig:"ANALYZER_BREAKER_FAILURE_RATIO" default:"0.6"`
	BreakerMinRequests  uint32        `envconfig:"ANALYZER_BREAKER_MIN_REQUESTS" default:"3"`
}

type smtpConfig struct {
	Host     string `envconfig:"SMTP_HOST" default:""`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME" default:""`
	Password string `envconfig:"SMTP_PASSWORD" default:""`
	From     string `envconfig:"SMTP_FROM" default:""`
}

type s3Config struct {
	Endpoint  string `envconfig:"S3_ENDPOINT" default:""`
	Bucket    string `envconfig:"S3_BUCKET" default:"resumes"`
	AccessKey string `envconfig:"S3_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"S3_SECRET_KEY" default:""`
	UseSSL    bool   `envconfig:"S3_USE_SSL" default:"true"`
}

// DSN returns the libpq keyword/value connection string. It is accepted by both gorm and pgxpool.
func (d *dbConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s port=%s",
		d.Hostname,
		d.User,
		d.Password,
		d.Port,
	)
	if d.Name != "" {
		dsn = fmt.Sprintf("%s dbname=%s", dsn, d.Name)
	}
	return dsn
}

func (d *dbConfig) IsPostgres() bool {
	return d.Type == "pgsql"
}

func (s *smtpConfig) Enabled() bool {
	return s.Host != ""
}

func (s *s3Config) Enabled() bool {
	return s.Endpoint != ""
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a fresh configuration read from the environment, bypassing the cached one.
func NewDefault() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
