package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds runtime configuration for all binaries. Values are injected from
// the environment at process start and never hot-reloaded.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"quiz-app"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:4000"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	Trivia   Trivia
	Quiz     Quiz
	CORS     CORS
}

// Postgres captures connection info for the submission store.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds snapshot-store configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
}

// Trivia configures the upstream question source.
type Trivia struct {
	BaseURL      string        `env:"TRIVIA_BASE_URL" envDefault:"https://opentdb.com"`
	FetchTimeout time.Duration `env:"TRIVIA_FETCH_TIMEOUT" envDefault:"8s"`
}

// Quiz groups gameplay defaults for a session.
type Quiz struct {
	QuestionCount int           `env:"QUIZ_QUESTION_COUNT" envDefault:"15"`
	Duration      time.Duration `env:"QUIZ_DURATION" envDefault:"30m"`
	ProxyBaseURL  string        `env:"QUIZ_API_URL" envDefault:"http://localhost:4000"`
	SnapshotKey   string        `env:"QUIZ_SNAPSHOT_KEY" envDefault:"quiz:session:state"`
	SubmitTimeout time.Duration `env:"QUIZ_SUBMIT_TIMEOUT" envDefault:"10s"`
}

// CORS holds Cross-Origin Resource Sharing configuration for the proxy.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Client is the subset of configuration the terminal quiz front end needs:
// where the proxy lives and where to keep the session snapshot.
type Client struct {
	Redis Redis
	Quiz  Quiz
}

// LoadClient parses environment variables into Client config.
func LoadClient() (*Client, error) {
	cfg := &Client{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse client config: %w", err)
	}
	return cfg, nil
}

// Load parses environment variables into App config.
func Load() (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ConnString renders a pgx-compatible connection string.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}
