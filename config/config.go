package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Storage drivers understood by the repositories layer.
const (
	DriverPostgREST = "postgrest"
	DriverPostgres  = "postgres"
	DriverMySQL     = "mysql"
	DriverSQLite    = "sqlite"
)

// Auth providers understood by the authorization middleware.
const (
	AuthProviderSupabase = "supabase"
	AuthProviderJWT      = "jwt"
)

// AppConfig holds environment driven configuration values.
// Secrets have no defaults and must come from the config file or the environment.
type AppConfig struct {
	AppPort string
	// Gin framework configuration
	GinMode    string
	GinLogPath string
	// Hosted Postgres-as-a-service (data + auth)
	SupabaseURL string
	SupabaseKey string
	// Identity verification
	AuthProvider string
	JWTSecret    string
	// Storage backend
	StorageDriver string
	DatabaseURL   string
	StorageRole   string
	// HTTP surface
	AllowedOrigins     []string
	RateLimitPerMinute int
	MetricsEnabled     bool
	// Redis read-through cache
	RedisEnabled  bool
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// Load reads configuration from dir and rejects settings the selected
// storage driver or auth provider cannot run with.
func Load(dir string) (AppConfig, error) {
	c, err := Read(dir)
	if err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// Read builds an AppConfig from defaults, an optional config file found in dir
// (config.yaml or config.json) and environment variables, in that precedence order.
func Read(dir string) (AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	if dir != "" {
		v.AddConfigPath(dir)
	}

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return AppConfig{
		AppPort:            v.GetString("app.port"),
		GinMode:            v.GetString("gin.mode"),
		GinLogPath:         v.GetString("gin.log_path"),
		SupabaseURL:        strings.TrimRight(v.GetString("supabase.url"), "/"),
		SupabaseKey:        v.GetString("supabase.key"),
		AuthProvider:       strings.ToLower(v.GetString("auth.provider")),
		JWTSecret:          v.GetString("auth.jwt_secret"),
		StorageDriver:      strings.ToLower(v.GetString("storage.driver")),
		DatabaseURL:        v.GetString("storage.dsn"),
		StorageRole:        v.GetString("storage.role"),
		AllowedOrigins:     readList(v, "cors.allowed_origins"),
		RateLimitPerMinute: v.GetInt("rate_limit_per_minute"),
		MetricsEnabled:     v.GetBool("metrics.enabled"),
		RedisEnabled:       v.GetBool("redis.enabled"),
		RedisHost:          v.GetString("redis.host"),
		RedisPort:          v.GetInt("redis.port"),
		RedisDB:            v.GetInt("redis.db"),
		RedisPassword:      v.GetString("redis.password"),
		LogLevel:           strings.ToLower(v.GetString("log.level")),
		LogPath:            v.GetString("log.path"),
		LogMaxSizeMB:       v.GetInt("log.max_size_mb"),
		LogMaxBackups:      v.GetInt("log.max_backups"),
		LogMaxAgeDays:      v.GetInt("log.max_age_days"),
		LogCompress:        v.GetBool("log.compress"),
	}, nil
}

// Validate reports settings that the selected driver and auth provider cannot run without.
func (c AppConfig) Validate() error {
	var problems []string

	switch c.StorageDriver {
	case DriverPostgREST:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			problems = append(problems, "SUPABASE_URL and SUPABASE_KEY are required for the postgrest driver")
		}
	case DriverPostgres, DriverMySQL, DriverSQLite:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for the "+c.StorageDriver+" driver")
		}
	default:
		problems = append(problems, "unknown storage driver "+c.StorageDriver)
	}

	switch c.AuthProvider {
	case AuthProviderSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			problems = append(problems, "SUPABASE_URL and SUPABASE_KEY are required for the supabase auth provider")
		}
	case AuthProviderJWT:
		if c.JWTSecret == "" {
			problems = append(problems, "SUPABASE_JWT_SECRET is required for the jwt auth provider")
		}
	default:
		problems = append(problems, "unknown auth provider "+c.AuthProvider)
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "3000")
	v.SetDefault("gin.mode", "release")
	v.SetDefault("gin.log_path", "logs/gin.log")
	v.SetDefault("auth.provider", AuthProviderSupabase)
	v.SetDefault("storage.driver", DriverPostgREST)
	v.SetDefault("storage.role", "authenticated")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("rate_limit_per_minute", 60)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.compress", false)
}

// bindEnv maps nested keys onto APP_PORT style variables and keeps the
// conventional names used by the hosted platform tooling.
func bindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("app.port", "APP_PORT", "PORT")
	_ = v.BindEnv("gin.mode", "GIN_MODE")
	_ = v.BindEnv("gin.log_path", "GIN_LOG_PATH", "GIN_PATH")
	_ = v.BindEnv("supabase.url", "SUPABASE_URL")
	_ = v.BindEnv("supabase.key", "SUPABASE_KEY")
	_ = v.BindEnv("auth.provider", "AUTH_PROVIDER")
	_ = v.BindEnv("auth.jwt_secret", "SUPABASE_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("storage.driver", "STORAGE_DRIVER")
	_ = v.BindEnv("storage.dsn", "DATABASE_URL")
	_ = v.BindEnv("storage.role", "STORAGE_ROLE")
	_ = v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")
	_ = v.BindEnv("rate_limit_per_minute", "RATE_LIMIT_PER_MINUTE")
	_ = v.BindEnv("metrics.enabled", "METRICS_ENABLED")
}

// readList accepts both a YAML/JSON list and a comma separated env value.
func readList(v *viper.Viper, key string) []string {
	raw := v.GetStringSlice(key)
	items := []string{}
	for _, entry := range raw {
		for _, item := range strings.Split(entry, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}
