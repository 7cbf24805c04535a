package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string
	Env  string

	DBPath        string
	MongoURI      string
	MongoDatabase string
	ProfileDSN    string

	SupabaseURL string
	JWTSecret   string
	JWTAudience string
	DevAuth     bool

	OpenWeatherKey string
	WeatherBaseURL string
	WeatherCity    string
	WeatherRefresh time.Duration
	HTTPTimeout    time.Duration

	GoogleAPIKey   string
	ChatModel      string
	EmbeddingModel string

	CropProfilesPath string
	KBAllowedDomains []string
	KBMaxBytes       int
	BodyLimit        string

	// DotenvErr is set when no .env file could be read; not fatal.
	DotenvErr error
}

// Issuer is the expected "iss" claim of Supabase access tokens.
func (c AppConfig) Issuer() string {
	if c.SupabaseURL == "" {
		return ""
	}
	return strings.TrimRight(c.SupabaseURL, "/") + "/auth/v1"
}

func (c AppConfig) Development() bool { return c.Env == "development" }

func Load() (AppConfig, error) {
	dotenvErr := godotenv.Load()

	get := func(k, def string) string {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
		return def
	}
	cfg := AppConfig{
		Port:             get("PORT", "8080"),
		Env:              get("APP_ENV", "development"),
		DBPath:           get("DB_PATH", "farmtech.db"),
		MongoURI:         get("MONGODB_URI", ""),
		MongoDatabase:    get("MONGODB_DB", "farmtech"),
		ProfileDSN:       get("PROFILE_DATABASE_URL", ""),
		SupabaseURL:      get("SUPABASE_URL", ""),
		JWTSecret:        get("SUPABASE_JWT_SECRET", ""),
		JWTAudience:      get("JWT_AUDIENCE", "authenticated"),
		OpenWeatherKey:   get("OPENWEATHER_API_KEY", ""),
		WeatherBaseURL:   get("OPENWEATHER_BASE_URL", ""),
		WeatherCity:      get("WEATHER_CITY", "Pune"),
		GoogleAPIKey:     get("GOOGLE_API_KEY", ""),
		ChatModel:        get("CHAT_MODEL", "gemini-2.5-flash"),
		EmbeddingModel:   get("EMBEDDING_MODEL", "gemini-embedding-001"),
		CropProfilesPath: get("CROP_PROFILES_PATH", ""),
		BodyLimit:        get("BODY_LIMIT", "50M"),
		DotenvErr:        dotenvErr,
	}
	for _, h := range strings.Split(get("KB_ALLOWED_DOMAINS", ""), ",") {
		if h = strings.TrimSpace(h); h != "" {
			cfg.KBAllowedDomains = append(cfg.KBAllowedDomains, h)
		}
	}

	var err error
	if cfg.WeatherRefresh, err = duration("WEATHER_REFRESH", get("WEATHER_REFRESH", "10m")); err != nil {
		return cfg, err
	}
	if cfg.HTTPTimeout, err = duration("HTTP_TIMEOUT", get("HTTP_TIMEOUT", "10s")); err != nil {
		return cfg, err
	}
	if cfg.KBMaxBytes, err = strconv.Atoi(get("KB_MAX_BYTES_PER_PAGE", "1500000")); err != nil || cfg.KBMaxBytes <= 0 {
		return cfg, fmt.Errorf("config: KB_MAX_BYTES_PER_PAGE must be a positive integer")
	}

	// dev auth is implied when there is no secret to verify tokens with
	cfg.DevAuth = cfg.JWTSecret == ""
	if v := get("DEV_AUTH", ""); v != "" {
		if cfg.DevAuth, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("config: DEV_AUTH: %w", err)
		}
	}
	if !cfg.DevAuth && cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("config: SUPABASE_JWT_SECRET is required when DEV_AUTH=false")
	}
	return cfg, nil
}

func duration(key, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive", key)
	}
	return d, nil
}
