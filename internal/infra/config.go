package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	StoragePath string

	LLMAPIKey  string
	LLMModel   string
	LLMBaseURL string

	ImageAPIKey  string
	ImageModel   string
	ImageBaseURL string

	SpeechAPIKey  string
	SpeechModel   string
	SpeechBaseURL string
	SpeechVoice   string

	TaskTimeout      time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. A .env file is honored when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StoragePath:      getEnv("STORAGE_PATH", "./storage"),
		LLMAPIKey:        os.Getenv("LLM_API_KEY"),
		LLMModel:         getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMBaseURL:       getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		ImageAPIKey:      getEnv("IMAGE_API_KEY", os.Getenv("LLM_API_KEY")),
		ImageModel:       getEnv("IMAGE_MODEL", "dall-e-3"),
		ImageBaseURL:     getEnv("IMAGE_BASE_URL", "https://api.openai.com/v1"),
		SpeechAPIKey:     getEnv("SPEECH_API_KEY", os.Getenv("LLM_API_KEY")),
		SpeechModel:      getEnv("SPEECH_MODEL", "tts-1"),
		SpeechBaseURL:    getEnv("SPEECH_BASE_URL", "https://api.openai.com/v1"),
		SpeechVoice:      getEnv("SPEECH_VOICE", "alloy"),
		TaskTimeout:      time.Second * time.Duration(getEnvInt("TASK_TIMEOUT_SECONDS", 120)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:   splitList(os.Getenv("ALLOWED_ORIGINS")),
	}

	if cfg.TaskTimeout < 0 {
		return nil, fmt.Errorf("TASK_TIMEOUT_SECONDS must not be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
