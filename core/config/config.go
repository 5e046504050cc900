package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	GoogleAPI GoogleAPIConfig
	Weather   WeatherConfig
	LLM       LLMConfig
	Providers ProvidersConfig
	Storage   StorageConfig
	Planner   PlannerConfig
}

type ServerConfig struct {
	Host     string
	Port     int
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // minutes
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessExpiration  time.Duration
	RefreshExpiration time.Duration
}

type GoogleAPIConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	MapsAPIKey   string
}

type WeatherConfig struct {
	APIKey  string
	BaseURL string
}

type LLMConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ProvidersConfig selects real or mock implementations per external service.
type ProvidersConfig struct {
	UseRealLLM      bool
	UseRealPlaces   bool
	UseRealWeather  bool
	UseRealCalendar bool
	// CalendarFixture is the ICS source used when UseRealCalendar is false.
	// Supports file paths, http(s) URLs and s3://bucket/key, with an optional
	// {user_id} placeholder.
	CalendarFixture string
}

type StorageConfig struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type PlannerConfig struct {
	MinSlotHours        float64
	IdeaCount           int
	VenuesPerIdea       int
	EventCount          int
	PromptSlotCount     int
	ResponseSlotCount   int
	DefaultFrameDays    int
	ExternalCallTimeout time.Duration
}

var (
	mu       sync.RWMutex
	instance *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 7070)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "dateplanner")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 30)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ACCESS_EXPIRATION", "60m")
	v.SetDefault("JWT_REFRESH_EXPIRATION", "720h")

	v.SetDefault("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")

	v.SetDefault("USE_REAL_LLM", false)
	v.SetDefault("USE_REAL_GOOGLE_PLACES", false)
	v.SetDefault("USE_REAL_WEATHER", false)
	v.SetDefault("USE_REAL_GOOGLE_CALENDAR", false)
	v.SetDefault("CALENDAR_FIXTURE", "")

	v.SetDefault("STORAGE_REGION", "us-east-1")

	v.SetDefault("PLANNER_MIN_SLOT_HOURS", 2.0)
	v.SetDefault("PLANNER_IDEA_COUNT", 3)
	v.SetDefault("PLANNER_VENUES_PER_IDEA", 5)
	v.SetDefault("PLANNER_EVENT_COUNT", 3)
	v.SetDefault("PLANNER_PROMPT_SLOT_COUNT", 5)
	v.SetDefault("PLANNER_RESPONSE_SLOT_COUNT", 10)
	v.SetDefault("PLANNER_DEFAULT_FRAME_DAYS", 7)
	v.SetDefault("PLANNER_EXTERNAL_CALL_TIMEOUT", "20s")
}

// Init loads .env (when present) and the process environment.
func Init() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := load(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mu.Lock()
	instance = cfg
	mu.Unlock()
	return cfg, nil
}

func load(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Host:     v.GetString("SERVER_HOST"),
			Port:     v.GetInt("SERVER_PORT"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetInt("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:            v.GetString("JWT_SECRET"),
			AccessExpiration:  v.GetDuration("JWT_ACCESS_EXPIRATION"),
			RefreshExpiration: v.GetDuration("JWT_REFRESH_EXPIRATION"),
		},
		GoogleAPI: GoogleAPIConfig{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			RedirectURI:  v.GetString("GOOGLE_REDIRECT_URI"),
			MapsAPIKey:   v.GetString("GOOGLE_MAPS_API_KEY"),
		},
		Weather: WeatherConfig{
			APIKey:  v.GetString("OPENWEATHER_API_KEY"),
			BaseURL: v.GetString("WEATHER_BASE_URL"),
		},
		LLM: LLMConfig{
			APIKey:  v.GetString("LLM_API_KEY"),
			Model:   v.GetString("LLM_MODEL"),
			BaseURL: v.GetString("LLM_BASE_URL"),
		},
		Providers: ProvidersConfig{
			UseRealLLM:      v.GetBool("USE_REAL_LLM"),
			UseRealPlaces:   v.GetBool("USE_REAL_GOOGLE_PLACES"),
			UseRealWeather:  v.GetBool("USE_REAL_WEATHER"),
			UseRealCalendar: v.GetBool("USE_REAL_GOOGLE_CALENDAR"),
			CalendarFixture: v.GetString("CALENDAR_FIXTURE"),
		},
		Storage: StorageConfig{
			Region:    v.GetString("STORAGE_REGION"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
		},
		Planner: PlannerConfig{
			MinSlotHours:        v.GetFloat64("PLANNER_MIN_SLOT_HOURS"),
			IdeaCount:           v.GetInt("PLANNER_IDEA_COUNT"),
			VenuesPerIdea:       v.GetInt("PLANNER_VENUES_PER_IDEA"),
			EventCount:          v.GetInt("PLANNER_EVENT_COUNT"),
			PromptSlotCount:     v.GetInt("PLANNER_PROMPT_SLOT_COUNT"),
			ResponseSlotCount:   v.GetInt("PLANNER_RESPONSE_SLOT_COUNT"),
			DefaultFrameDays:    v.GetInt("PLANNER_DEFAULT_FRAME_DAYS"),
			ExternalCallTimeout: v.GetDuration("PLANNER_EXTERNAL_CALL_TIMEOUT"),
		},
	}
}

// Validate checks that every real provider has the credentials it needs.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Providers.UseRealLLM && c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required when USE_REAL_LLM is set")
	}
	if c.Providers.UseRealPlaces && c.GoogleAPI.MapsAPIKey == "" {
		return fmt.Errorf("GOOGLE_MAPS_API_KEY is required when USE_REAL_GOOGLE_PLACES is set")
	}
	if c.Providers.UseRealWeather && c.Weather.APIKey == "" {
		return fmt.Errorf("OPENWEATHER_API_KEY is required when USE_REAL_WEATHER is set")
	}
	if c.Providers.UseRealCalendar && (c.GoogleAPI.ClientID == "" || c.GoogleAPI.ClientSecret == "") {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required when USE_REAL_GOOGLE_CALENDAR is set")
	}
	if c.Planner.MinSlotHours <= 0 || c.Planner.IdeaCount <= 0 || c.Planner.EventCount <= 0 {
		return fmt.Errorf("planner policy values must be positive")
	}
	return nil
}

func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

func GetSafe() (*Config, bool) {
	cfg := Get()
	return cfg, cfg != nil
}

// Set installs cfg as the process configuration. Used by tests.
func Set(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}
