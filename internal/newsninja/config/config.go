// Package config holds the NewsNinja runtime configuration.
package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/RobinCoderZhao/newsninja/pkg/config"
	"github.com/RobinCoderZhao/newsninja/pkg/storage"
)

// Config is the full NewsNinja configuration. Every field can be set from a
// YAML/TOML file and overridden by the environment variable in its env tag.
type Config struct {
	Server      ServerConfig    `yaml:"server" toml:"server"`
	Credentials Credentials     `yaml:"credentials" toml:"credentials"`
	Sources     SourcesConfig   `yaml:"sources" toml:"sources"`
	Synthesis   SynthesisConfig `yaml:"synthesis" toml:"synthesis"`
	Audio       AudioConfig     `yaml:"audio" toml:"audio"`
	Timeouts    TimeoutsConfig  `yaml:"timeouts" toml:"timeouts"`
	Store       storage.Config  `yaml:"store" toml:"store"`
	Log         LogConfig       `yaml:"log" toml:"log"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string             `yaml:"addr" toml:"addr" env:"NEWSNINJA_ADDR"`
	Fallback        bool               `yaml:"fallback" toml:"fallback" env:"NEWSNINJA_FALLBACK"`
	AllowOrigin     string             `yaml:"allow_origin" toml:"allow_origin" env:"NEWSNINJA_ALLOW_ORIGIN"`
	ShutdownTimeout pkgconfig.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// Credentials are the external service keys. They normally come from .env.
type Credentials struct {
	GeminiAPIKey     string `yaml:"gemini_api_key" toml:"gemini_api_key" env:"GEMINI_API_KEY"`
	ElevenAPIKey     string `yaml:"eleven_api_key" toml:"eleven_api_key" env:"ELEVEN_API_KEY"`
	BrightDataAPIKey string `yaml:"brightdata_api_key" toml:"brightdata_api_key" env:"BRIGHTDATA_API_KEY"`
	BrightDataZone   string `yaml:"brightdata_zone" toml:"brightdata_zone" env:"BRIGHTDATA_WEB_UNLOCKER_ZONE"`
}

// SourcesConfig configures fetching and per-topic aggregation.
type SourcesConfig struct {
	UnlockerEndpoint string             `yaml:"unlocker_endpoint" toml:"unlocker_endpoint" env:"BRIGHTDATA_ENDPOINT"`
	FetchTimeout     pkgconfig.Duration `yaml:"fetch_timeout" toml:"fetch_timeout"`
	AdmitEvery       pkgconfig.Duration `yaml:"admit_every" toml:"admit_every"` // limiter token interval per source kind
	TopicDelay       pkgconfig.Duration `yaml:"topic_delay" toml:"topic_delay"`
	Attempts         int                `yaml:"attempts" toml:"attempts"`
	BackoffBase      pkgconfig.Duration `yaml:"backoff_base" toml:"backoff_base"`
	BackoffMax       pkgconfig.Duration `yaml:"backoff_max" toml:"backoff_max"`
	SummaryModel     string             `yaml:"summary_model" toml:"summary_model" env:"NEWSNINJA_SUMMARY_MODEL"`
}

// SynthesisConfig configures broadcast script generation.
type SynthesisConfig struct {
	Tiers       []string           `yaml:"tiers" toml:"tiers" env:"NEWSNINJA_TIERS"`
	OllamaURL   string             `yaml:"ollama_url" toml:"ollama_url" env:"OLLAMA_HOST"`
	MaxTokens   int                `yaml:"max_tokens" toml:"max_tokens"`
	Temperature float64            `yaml:"temperature" toml:"temperature"`
	TopP        float64            `yaml:"top_p" toml:"top_p"`
	TopK        int                `yaml:"top_k" toml:"top_k"`
	Timeout     pkgconfig.Duration `yaml:"timeout" toml:"timeout"`
}

// AudioConfig configures the TTS providers and artifact retention.
type AudioConfig struct {
	OutputDir     string             `yaml:"output_dir" toml:"output_dir" env:"NEWSNINJA_AUDIO_DIR"`
	ElevenBaseURL string             `yaml:"eleven_base_url" toml:"eleven_base_url"`
	VoiceID       string             `yaml:"voice_id" toml:"voice_id" env:"ELEVEN_VOICE_ID"`
	ModelID       string             `yaml:"model_id" toml:"model_id"`
	OutputFormat  string             `yaml:"output_format" toml:"output_format"`
	GTTSBaseURL   string             `yaml:"gtts_base_url" toml:"gtts_base_url"`
	Language      string             `yaml:"language" toml:"language"`
	Retention     pkgconfig.Duration `yaml:"retention" toml:"retention" env:"NEWSNINJA_RETENTION"`
	SweepInterval pkgconfig.Duration `yaml:"sweep_interval" toml:"sweep_interval"`
}

// TimeoutsConfig bounds each pipeline stage.
type TimeoutsConfig struct {
	Aggregate  pkgconfig.Duration `yaml:"aggregate" toml:"aggregate"`
	Synthesize pkgconfig.Duration `yaml:"synthesize" toml:"synthesize"`
	Render     pkgconfig.Duration `yaml:"render" toml:"render"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" toml:"format" env:"LOG_FORMAT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":1234",
			ShutdownTimeout: pkgconfig.Duration(5 * time.Second),
		},
		Sources: SourcesConfig{
			FetchTimeout: pkgconfig.Duration(60 * time.Second),
			AdmitEvery:   pkgconfig.Duration(200 * time.Millisecond),
			TopicDelay:   pkgconfig.Duration(time.Second),
			Attempts:     3,
			BackoffBase:  pkgconfig.Duration(2 * time.Second),
			BackoffMax:   pkgconfig.Duration(10 * time.Second),
			SummaryModel: "gemini-1.5-pro",
		},
		Synthesis: SynthesisConfig{
			Tiers:       []string{"gemini:gemini-1.5-flash", "gemini:gemini-pro", "gemini:gemini-1.5-pro"},
			OllamaURL:   "http://localhost:11434",
			MaxTokens:   1000,
			Temperature: 0.7,
			TopP:        0.8,
			TopK:        40,
			Timeout:     pkgconfig.Duration(60 * time.Second),
		},
		Audio: AudioConfig{
			OutputDir:     "audio",
			ElevenBaseURL: "https://api.elevenlabs.io",
			VoiceID:       "JBFqnCBsd6RMkjVDRZzb",
			ModelID:       "eleven_multilingual_v2",
			OutputFormat:  "mp3_44100_128",
			GTTSBaseURL:   "https://translate.google.com",
			Language:      "en",
			Retention:     pkgconfig.Duration(24 * time.Hour),
			SweepInterval: pkgconfig.Duration(time.Hour),
		},
		Timeouts: TimeoutsConfig{
			Aggregate:  pkgconfig.Duration(3 * time.Minute),
			Synthesize: pkgconfig.Duration(2 * time.Minute),
			Render:     pkgconfig.Duration(3 * time.Minute),
		},
		Store: storage.Config{Driver: storage.SQLite, DSN: "newsninja.db"},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Load starts from Default, applies the file at path (if it exists) and
// then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := pkgconfig.LoadOrDefault(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values that would make the pipeline misbehave.
func (c Config) Validate() error {
	if len(c.Synthesis.Tiers) == 0 {
		return fmt.Errorf("synthesis.tiers must not be empty")
	}
	if c.Sources.Attempts < 1 {
		return fmt.Errorf("sources.attempts must be at least 1, got %d", c.Sources.Attempts)
	}
	if c.Sources.AdmitEvery <= 0 {
		return fmt.Errorf("sources.admit_every must be positive")
	}
	if c.Audio.OutputDir == "" {
		return fmt.Errorf("audio.output_dir must not be empty")
	}
	if c.Audio.Retention <= 0 {
		return fmt.Errorf("audio.retention must be positive, got %s", c.Audio.Retention)
	}
	if c.Audio.SweepInterval <= 0 {
		return fmt.Errorf("audio.sweep_interval must be positive, got %s", c.Audio.SweepInterval)
	}
	return nil
}

// MissingCredentials lists the unset credential variables in the order the
// pipeline checks them.
func (c Config) MissingCredentials() []string {
	var missing []string
	for _, kv := range []struct{ name, value string }{
		{"GEMINI_API_KEY", c.Credentials.GeminiAPIKey},
		{"ELEVEN_API_KEY", c.Credentials.ElevenAPIKey},
		{"BRIGHTDATA_API_KEY", c.Credentials.BrightDataAPIKey},
		{"BRIGHTDATA_WEB_UNLOCKER_ZONE", c.Credentials.BrightDataZone},
	} {
		if kv.value == "" {
			missing = append(missing, kv.name)
		}
	}
	return missing
}
