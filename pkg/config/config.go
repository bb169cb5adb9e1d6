package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/course-timetable-api/internal/timetable"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Timetable TimetableConfig
	Options   OptionsConfig
	Directory DirectoryConfig
	Login     LoginConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	// ConnMaxLifetime caps how long a pooled connection is reused.
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
	AppName         string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	// KeyPrefix namespaces every key this service writes.
	KeyPrefix   string
	DialTimeout time.Duration
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

type LogConfig struct {
	Level   string
	Format  string
	Service string
}

// TimetableConfig holds the calendar layout constants. A window that does
// not start before it ends stops the service at startup.
type TimetableConfig struct {
	WindowStart    string
	WindowEnd      string
	WidthDecay     float64
	SweepThreshold int
	PixelsPerMin   int
}

// OptionsConfig tunes caching of dropdown option lists.
type OptionsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DirectoryConfig configures staff authentication against the campus directory.
type DirectoryConfig struct {
	URL            string
	MemberDN       string
	BindDN         string
	BindPassword   string
	SearchFilter   string
	Timeout        time.Duration
	Bypass         bool
	LocalUsers     map[string]string
	BootstrapAdmin string
}

// LoginConfig throttles the login endpoint per client IP.
type LoginConfig struct {
	RatePerMinute int
	Burst         int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),

		ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), time.Hour),
		ConnectTimeout:  parseDuration(v.GetString("DB_CONNECT_TIMEOUT"), 5*time.Second),
		AppName:         v.GetString("DB_APPLICATION_NAME"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),

		KeyPrefix:   v.GetString("REDIS_KEY_PREFIX"),
		DialTimeout: parseDuration(v.GetString("REDIS_DIAL_TIMEOUT"), 3*time.Second),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS")),
		MaxAge:         parseDuration(v.GetString("CORS_MAX_AGE"), 10*time.Minute),
	}

	cfg.Log = LogConfig{
		Level:   v.GetString("LOG_LEVEL"),
		Format:  v.GetString("LOG_FORMAT"),
		Service: v.GetString("LOG_SERVICE_NAME"),
	}

	cfg.Timetable = TimetableConfig{
		WindowStart:    v.GetString("TIMETABLE_WINDOW_START"),
		WindowEnd:      v.GetString("TIMETABLE_WINDOW_END"),
		WidthDecay:     v.GetFloat64("TIMETABLE_WIDTH_DECAY"),
		SweepThreshold: v.GetInt("TIMETABLE_SWEEP_THRESHOLD"),
		PixelsPerMin:   v.GetInt("TIMETABLE_PIXELS_PER_MINUTE"),
	}

	cfg.Options = OptionsConfig{
		CacheEnabled: v.GetBool("OPTIONS_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("OPTIONS_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Directory = DirectoryConfig{
		URL:            v.GetString("DIRECTORY_URL"),
		MemberDN:       v.GetString("DIRECTORY_MEMBER_DN"),
		BindDN:         v.GetString("DIRECTORY_BIND_DN"),
		BindPassword:   v.GetString("DIRECTORY_BIND_PASSWORD"),
		SearchFilter:   v.GetString("DIRECTORY_SEARCH_FILTER"),
		Timeout:        parseDuration(v.GetString("DIRECTORY_TIMEOUT"), 5*time.Second),
		Bypass:         v.GetBool("DIRECTORY_BYPASS"),
		LocalUsers:     parsePairs(v.GetString("DIRECTORY_LOCAL_USERS")),
		BootstrapAdmin: v.GetString("DIRECTORY_BOOTSTRAP_SUPERUSER"),
	}

	cfg.Login = LoginConfig{
		RatePerMinute: v.GetInt("LOGIN_RATE_PER_MINUTE"),
		Burst:         v.GetInt("LOGIN_RATE_BURST"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if _, err := c.Timetable.Window(); err != nil {
		return err
	}
	if c.Timetable.WidthDecay <= 0 || c.Timetable.WidthDecay > 1 {
		return fmt.Errorf("TIMETABLE_WIDTH_DECAY must be in (0, 1], got %v", c.Timetable.WidthDecay)
	}
	if c.Env == EnvProduction && c.Directory.Bypass {
		return errors.New("DIRECTORY_BYPASS cannot be enabled in production")
	}
	return nil
}

// Window parses the configured display window.
func (t TimetableConfig) Window() (timetable.Window, error) {
	start, err := timetable.ParseTimeLabel(t.WindowStart)
	if err != nil {
		return timetable.Window{}, fmt.Errorf("TIMETABLE_WINDOW_START: %w", err)
	}
	end, err := timetable.ParseTimeLabel(t.WindowEnd)
	if err != nil {
		return timetable.Window{}, fmt.Errorf("TIMETABLE_WINDOW_END: %w", err)
	}
	w := timetable.Window{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return timetable.Window{}, fmt.Errorf("%w: %s-%s", err, t.WindowStart, t.WindowEnd)
	}
	return w, nil
}

// EngineConfig converts the settings into layout engine configuration.
func (t TimetableConfig) EngineConfig() (timetable.EngineConfig, error) {
	w, err := t.Window()
	if err != nil {
		return timetable.EngineConfig{}, err
	}
	return timetable.EngineConfig{Window: w, WidthDecay: t.WidthDecay, SweepThreshold: t.SweepThreshold}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "course_timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DB_CONNECT_TIMEOUT", "5s")
	v.SetDefault("DB_APPLICATION_NAME", "course-timetable-api")

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "timetable")
	v.SetDefault("REDIS_DIAL_TIMEOUT", "3s")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "course-timetable-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_SERVICE_NAME", "course-timetable-api")
	v.SetDefault("CORS_MAX_AGE", "10m")

	v.SetDefault("TIMETABLE_WINDOW_START", "08:00")
	v.SetDefault("TIMETABLE_WINDOW_END", "21:00")
	v.SetDefault("TIMETABLE_WIDTH_DECAY", timetable.DefaultWidthDecay)
	v.SetDefault("TIMETABLE_SWEEP_THRESHOLD", 64)
	v.SetDefault("TIMETABLE_PIXELS_PER_MINUTE", 1)

	v.SetDefault("OPTIONS_CACHE_ENABLED", true)
	v.SetDefault("OPTIONS_CACHE_TTL", "10m")

	v.SetDefault("DIRECTORY_URL", "ldaps://localhost:636")
	v.SetDefault("DIRECTORY_MEMBER_DN", "ou=People,dc=example,dc=edu")
	v.SetDefault("DIRECTORY_BIND_DN", "")
	v.SetDefault("DIRECTORY_BIND_PASSWORD", "")
	v.SetDefault("DIRECTORY_SEARCH_FILTER", "(objectClass=*)")
	v.SetDefault("DIRECTORY_TIMEOUT", "5s")
	v.SetDefault("DIRECTORY_BYPASS", false)
	v.SetDefault("DIRECTORY_LOCAL_USERS", "")
	v.SetDefault("DIRECTORY_BOOTSTRAP_SUPERUSER", "")

	v.SetDefault("LOGIN_RATE_PER_MINUTE", 10)
	v.SetDefault("LOGIN_RATE_BURST", 5)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// parsePairs reads "user:hash,user2:hash2". Bcrypt hashes contain no commas.
func parsePairs(raw string) map[string]string {
	out := make(map[string]string)
	for _, item := range splitAndTrim(raw) {
		user, hash, ok := strings.Cut(item, ":")
		if !ok || strings.TrimSpace(user) == "" || hash == "" {
			continue
		}
		out[strings.TrimSpace(user)] = hash
	}
	return out
}
