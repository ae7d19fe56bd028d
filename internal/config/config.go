package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Environment
	Environment string

	// Server
	Port        string
	FrontendURL string

	// Storage (empty disables the store)
	DatabaseURL    string
	RedisURL       string
	MigrateOnStart bool

	// Security
	JWTSecret      string
	AdminTokenHash string // bcrypt hash of the admin API token

	// Table
	TableWidth  float64
	TableHeight float64
	BallRadius  float64
	Friction    float64
	Magnus      float64
	SpinDecay   float64

	// Simulation runner
	FrameRate             int
	MaxFramesPerStep      int
	MaxSessions           int
	SessionIdleMinutes    int
	ReaperIntervalSeconds int
	SnapshotTTLSeconds    int

	Logger LoggerConfig
}

// LoggerConfig configures the zap logger and its optional rotating file.
type LoggerConfig struct {
	ServiceName string
	Level       string
	Format      string // "console" or "json"
	AddSource   bool
	LogFile     string
	MaxSize     int // megabytes
	MaxBackups  int
	MaxAge      int // days
	Compress    bool
}

var defaults = map[string]interface{}{
	"APP_ENV":      "development",
	"APP_PORT":     "8080",
	"FRONTEND_URL": "http://localhost:5173",

	"DATABASE_URL":     "",
	"REDIS_URL":        "",
	"MIGRATE_ON_START": false,

	"JWT_SECRET":       "change-me-in-production",
	"ADMIN_TOKEN_HASH": "",

	"TABLE_WIDTH":    2.7432,
	"TABLE_HEIGHT":   1.3716,
	"BALL_RADIUS":    0.028575,
	"FRICTION_COEFF": 0.02,
	"MAGNUS_COEFF":   0.0005,
	"SPIN_DECAY":     1.0,

	"FRAME_RATE":              60,
	"MAX_FRAMES_PER_STEP":     600,
	"MAX_SESSIONS":            100,
	"SESSION_IDLE_MINUTES":    30,
	"REAPER_INTERVAL_SECONDS": 60,
	"SNAPSHOT_TTL_SECONDS":    3600,

	"LOG_LEVEL":       "info",
	"LOG_FORMAT":      "console",
	"LOG_ADD_SOURCE":  false,
	"LOG_FILE":        "",
	"LOG_MAX_SIZE_MB": 100,
	"LOG_MAX_BACKUPS": 3,
	"LOG_MAX_AGE":     28,
	"LOG_COMPRESS":    false,
}

// Load reads configuration from the environment, a .env file if present, and
// an optional YAML file named by BILLIARDS_CONFIG (or ./config.yaml).
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper) error {
	path := os.Getenv("BILLIARDS_CONFIG")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err != nil {
			return nil
		}
		path = "config.yaml"
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Environment: v.GetString("APP_ENV"),
		Port:        v.GetString("APP_PORT"),
		FrontendURL: v.GetString("FRONTEND_URL"),

		DatabaseURL:    v.GetString("DATABASE_URL"),
		RedisURL:       v.GetString("REDIS_URL"),
		MigrateOnStart: v.GetBool("MIGRATE_ON_START"),

		JWTSecret:      v.GetString("JWT_SECRET"),
		AdminTokenHash: v.GetString("ADMIN_TOKEN_HASH"),

		TableWidth:  v.GetFloat64("TABLE_WIDTH"),
		TableHeight: v.GetFloat64("TABLE_HEIGHT"),
		BallRadius:  v.GetFloat64("BALL_RADIUS"),
		Friction:    v.GetFloat64("FRICTION_COEFF"),
		Magnus:      v.GetFloat64("MAGNUS_COEFF"),
		SpinDecay:   v.GetFloat64("SPIN_DECAY"),

		FrameRate:             v.GetInt("FRAME_RATE"),
		MaxFramesPerStep:      v.GetInt("MAX_FRAMES_PER_STEP"),
		MaxSessions:           v.GetInt("MAX_SESSIONS"),
		SessionIdleMinutes:    v.GetInt("SESSION_IDLE_MINUTES"),
		ReaperIntervalSeconds: v.GetInt("REAPER_INTERVAL_SECONDS"),
		SnapshotTTLSeconds:    v.GetInt("SNAPSHOT_TTL_SECONDS"),

		Logger: LoggerConfig{
			ServiceName: "billiards",
			Level:       v.GetString("LOG_LEVEL"),
			Format:      v.GetString("LOG_FORMAT"),
			AddSource:   v.GetBool("LOG_ADD_SOURCE"),
			LogFile:     v.GetString("LOG_FILE"),
			MaxSize:     v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups:  v.GetInt("LOG_MAX_BACKUPS"),
			MaxAge:      v.GetInt("LOG_MAX_AGE"),
			Compress:    v.GetBool("LOG_COMPRESS"),
		},
	}
}

// Validate rejects settings the simulator cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.TableWidth <= 0 || c.TableHeight <= 0 {
		errs = append(errs, fmt.Errorf("table size must be positive, got %vx%v", c.TableWidth, c.TableHeight))
	}
	if c.BallRadius <= 0 {
		errs = append(errs, fmt.Errorf("ball radius must be positive, got %v", c.BallRadius))
	}
	if c.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame rate must be positive, got %d", c.FrameRate))
	}
	if c.MaxFramesPerStep <= 0 {
		errs = append(errs, fmt.Errorf("max frames per step must be positive, got %d", c.MaxFramesPerStep))
	}
	if c.SessionIdleMinutes <= 0 {
		errs = append(errs, fmt.Errorf("session idle minutes must be positive, got %d", c.SessionIdleMinutes))
	}
	if c.ReaperIntervalSeconds <= 0 {
		errs = append(errs, fmt.Errorf("reaper interval must be positive, got %d", c.ReaperIntervalSeconds))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
