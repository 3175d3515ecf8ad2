package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	LLM      LLMConfig
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	Renderer RendererConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type LLMConfig struct {
	Provider    string
	Temperature float64
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type RendererConfig struct {
	WkhtmltopdfPath string
	BasePath        string
}

type StorageConfig struct {
	AssetPath   string
	LogoFile    string
	OutputPath  string
	MaxFileSize int64
	DebugHTML   bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type WorkerConfig struct {
	Concurrency       int
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
}

// Load reads configuration from the environment. It fails hard when the
// selected LLM provider has no credentials, instead of discovering that on
// the first report request.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "report_generator"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "report_narratives"),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", ProviderGemini),
			Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Renderer: RendererConfig{
			WkhtmltopdfPath: getEnv("WKHTMLTOPDF_PATH", ""),
			BasePath:        getEnv("RENDER_BASE_PATH", "."),
		},
		Storage: StorageConfig{
			AssetPath:   getEnv("ASSET_PATH", "./assets"),
			LogoFile:    getEnv("LOGO_FILE", "logo.png"),
			OutputPath:  getEnv("OUTPUT_PATH", "./output"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			DebugHTML:   getEnvAsBool("DEBUG_HTML", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Worker: WorkerConfig{
			Concurrency:       getEnvAsInt("WORKER_CONCURRENCY", 3),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", "2s"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=%s", ProviderGemini)
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=%s", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER: %s", c.LLM.Provider)
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
