package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every setting a run needs. It is built once at startup and
// passed down explicitly; nothing below the config package reads the
// environment.
type Config struct {
	OpenAIAPIKey string
	DefaultModel string
	MaxTokens    int
	Temperature  float32
	TopP         float32

	AudioBitrate string
	OutputDir    string

	TokenFile        string
	ClientSecretFile string

	DatabaseURL   string
	ServiceAPIKey string

	PromptsFolder string

	LogLevel string
}

// WhisperConfig carries transcription-specific settings.
type WhisperConfig struct {
	Language       string
	Temperature    float32
	ResponseFormat string
	Prompt         string
}

// Load reads .env (if present) and returns defaults overridable by
// environment variables.
func Load() (Config, WhisperConfig) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := Config{
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		DefaultModel:     envOr("DEFAULT_MODEL", "gpt-4o"),
		MaxTokens:        envIntOr("MAX_TOKENS", 16000),
		Temperature:      envFloatOr("TEMPERATURE", 0.7),
		TopP:             envFloatOr("TOP_P", 1.0),
		AudioBitrate:     envOr("AUDIO_BITRATE", "12k"),
		OutputDir:        envOr("DEFAULT_OUTPUT_DIR", "videos"),
		TokenFile:        envOr("TOKEN_FILE", "token.json"),
		ClientSecretFile: envOr("CLIENT_SECRET_FILE", "client_secret_youtube.json"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ServiceAPIKey:    os.Getenv("SERVICE_API_KEY"),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
	}

	whisper := WhisperConfig{
		Language:       envOr("WHISPER_LANGUAGE", "en"),
		Temperature:    envFloatOr("WHISPER_TEMPERATURE", 0.7),
		ResponseFormat: envOr("WHISPER_RESPONSE_FORMAT", "verbose_json"),
		Prompt:         os.Getenv("WHISPER_PROMPT"),
	}

	return cfg, whisper
}

// LoadFolder overlays cfg and whisper with values from a configuration
// folder: llm_config.txt and whisper_config.txt hold key=value lines, and
// prompts/ holds the prompt templates. Empty values never override.
func LoadFolder(folder string, cfg Config, whisper WhisperConfig) (Config, WhisperConfig, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return cfg, whisper, fmt.Errorf("resolving config folder %q: %w", folder, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return cfg, whisper, fmt.Errorf("config folder %q: %w", folder, err)
	}

	cfg.PromptsFolder = filepath.Join(abs, "prompts")

	llmValues, err := parseKeyValueFile(filepath.Join(abs, "llm_config.txt"))
	if err != nil {
		return cfg, whisper, err
	}
	applyLLMValues(&cfg, llmValues)

	whisperValues, err := parseKeyValueFile(filepath.Join(abs, "whisper_config.txt"))
	if err != nil {
		return cfg, whisper, err
	}
	applyWhisperValues(&whisper, whisperValues)

	return cfg, whisper, nil
}

// parseKeyValueFile reads key=value lines. A missing file is not an error;
// malformed lines (no '=') and blank values are skipped.
func parseKeyValueFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

func applyLLMValues(cfg *Config, values map[string]string) {
	for key, value := range values {
		switch key {
		case "openai_api_key":
			cfg.OpenAIAPIKey = value
		case "default_model":
			cfg.DefaultModel = value
		case "max_tokens":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.MaxTokens = n
			}
		case "temperature":
			if f, err := strconv.ParseFloat(value, 32); err == nil {
				cfg.Temperature = float32(f)
			}
		case "top_p":
			if f, err := strconv.ParseFloat(value, 32); err == nil {
				cfg.TopP = float32(f)
			}
		case "audio_bitrate":
			cfg.AudioBitrate = value
		case "token_file":
			cfg.TokenFile = value
		case "client_secret_file":
			cfg.ClientSecretFile = value
		}
	}
}

func applyWhisperValues(whisper *WhisperConfig, values map[string]string) {
	for key, value := range values {
		switch key {
		case "language":
			whisper.Language = value
		case "temperature":
			if f, err := strconv.ParseFloat(value, 32); err == nil {
				whisper.Temperature = float32(f)
			}
		case "response_format":
			whisper.ResponseFormat = value
		case "prompt":
			whisper.Prompt = value
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}

// SlogLevel maps the configured log level name onto a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
