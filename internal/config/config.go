// Package config holds the typed runtime configuration. Provider profiles are
// explicit struct fields selected at compile time, not looked up by string key.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/owenshen0907/NihonGO/internal/platform/envutil"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

// Profile is one OpenAI-compatible endpoint plus the system prompt used with it.
type Profile struct {
	APIURL       string `yaml:"api_url"`
	APIKey       string `yaml:"api_key"`
	Model        string `yaml:"model"`
	SystemPrompt string `yaml:"system_prompt"`
}

// Profiles enumerates every upstream call the backend makes.
type Profiles struct {
	Chat             Profile `yaml:"chat"`
	NoteGeneration   Profile `yaml:"note_generation"`
	WordExtension    Profile `yaml:"word_extension"`
	GrammarExtension Profile `yaml:"grammar_extension"`
	Embedding        Profile `yaml:"embedding"`
}

type Casdoor struct {
	Endpoint     string `yaml:"endpoint"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
}

type Resolution struct {
	// Cosine-distance acceptance threshold, compared with strict <.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	// Nearest-neighbor candidates fetched from the corpus.
	TopK int `yaml:"top_k"`
	// Upper bound on a single embedding request.
	EmbedTimeoutSeconds int `yaml:"embed_timeout_seconds"`
}

type Config struct {
	Addr            string     `yaml:"addr"`
	JWTSecret       string     `yaml:"jwt_secret"`
	SessionTTLHours int        `yaml:"session_ttl_hours"`
	Casdoor         Casdoor    `yaml:"casdoor"`
	Profiles        Profiles   `yaml:"profiles"`
	Resolution      Resolution `yaml:"resolution"`
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c Config) EmbedTimeout() time.Duration {
	return time.Duration(c.Resolution.EmbedTimeoutSeconds) * time.Second
}

// Load builds the config from defaults, an optional YAML file (CONFIG_FILE,
// falling back to ./config.yaml), and finally env overrides, in that order.
func Load(log *logger.Logger) (Config, error) {
	cfg := defaults()

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		path = "config.yaml"
	}
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	}

	applyEnv(&cfg, log)

	if cfg.Resolution.SimilarityThreshold <= 0 {
		return Config{}, fmt.Errorf("similarity threshold must be positive, got %v", cfg.Resolution.SimilarityThreshold)
	}
	if cfg.Resolution.TopK <= 0 {
		return Config{}, fmt.Errorf("top_k must be positive, got %d", cfg.Resolution.TopK)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Addr:            ":8080",
		JWTSecret:       "defaultsecret",
		SessionTTLHours: 24,
		Resolution: Resolution{
			SimilarityThreshold: 0.35,
			TopK:                10,
			EmbedTimeoutSeconds: 30,
		},
		Profiles: Profiles{
			Chat: Profile{
				APIURL:       "https://api.openai.com/v1/chat/completions",
				Model:        "gpt-4o-mini",
				SystemPrompt: chatSystemPrompt,
			},
			NoteGeneration: Profile{
				APIURL:       "https://api.openai.com/v1/chat/completions",
				Model:        "gpt-4o-mini",
				SystemPrompt: noteGenerationSystemPrompt,
			},
			WordExtension: Profile{
				APIURL:       "https://api.openai.com/v1/chat/completions",
				Model:        "gpt-4o-mini",
				SystemPrompt: wordExtensionSystemPrompt,
			},
			GrammarExtension: Profile{
				APIURL:       "https://api.openai.com/v1/chat/completions",
				Model:        "gpt-4o-mini",
				SystemPrompt: grammarExtensionSystemPrompt,
			},
			Embedding: Profile{
				APIURL: "https://api.openai.com/v1/embeddings",
				Model:  "text-embedding-3-small",
			},
		},
	}
}

func applyEnv(cfg *Config, log *logger.Logger) {
	cfg.Addr = envutil.GetEnv("ADDR", cfg.Addr, log)
	cfg.JWTSecret = envutil.GetEnv("JWT_SECRET_KEY", cfg.JWTSecret, log)
	cfg.SessionTTLHours = envutil.GetEnvAsInt("SESSION_TTL_HOURS", cfg.SessionTTLHours, log)

	cfg.Casdoor.Endpoint = envutil.GetEnv("CASDOOR_ENDPOINT", cfg.Casdoor.Endpoint, log)
	cfg.Casdoor.ClientID = envutil.GetEnv("CASDOOR_CLIENT_ID", cfg.Casdoor.ClientID, log)
	cfg.Casdoor.ClientSecret = envutil.GetEnv("CASDOOR_CLIENT_SECRET", cfg.Casdoor.ClientSecret, log)
	cfg.Casdoor.RedirectURI = envutil.GetEnv("CASDOOR_REDIRECT_URI", cfg.Casdoor.RedirectURI, log)

	// One OPENAI_* pair covers every chat-style profile unless a profile-specific
	// value was set in the config file.
	apiURL := envutil.GetEnv("OPENAI_API_URL", "", log)
	apiKey := envutil.GetEnv("OPENAI_API_KEY", "", log)
	for _, p := range []*Profile{
		&cfg.Profiles.Chat,
		&cfg.Profiles.NoteGeneration,
		&cfg.Profiles.WordExtension,
		&cfg.Profiles.GrammarExtension,
	} {
		if apiURL != "" {
			p.APIURL = apiURL
		}
		if apiKey != "" {
			p.APIKey = apiKey
		}
	}
	if apiKey != "" {
		cfg.Profiles.Embedding.APIKey = apiKey
	}
	if v := envutil.GetEnv("OPENAI_API_EMBEDDING_URL", "", log); v != "" {
		cfg.Profiles.Embedding.APIURL = v
	}
	if v := envutil.GetEnv("OPENAI_EMBEDDING_MODEL", "", log); v != "" {
		cfg.Profiles.Embedding.Model = v
	}
	if v := envutil.GetEnv("OPENAI_MODEL", "", log); v != "" {
		cfg.Profiles.Chat.Model = v
		cfg.Profiles.NoteGeneration.Model = v
		cfg.Profiles.WordExtension.Model = v
		cfg.Profiles.GrammarExtension.Model = v
	}

	cfg.Resolution.SimilarityThreshold = envutil.GetEnvAsFloat("GRAMMAR_SIMILARITY_THRESHOLD", cfg.Resolution.SimilarityThreshold, log)
	cfg.Resolution.TopK = envutil.GetEnvAsInt("GRAMMAR_TOP_K", cfg.Resolution.TopK, log)
	cfg.Resolution.EmbedTimeoutSeconds = envutil.GetEnvAsInt("EMBED_TIMEOUT_SECONDS", cfg.Resolution.EmbedTimeoutSeconds, log)
}
