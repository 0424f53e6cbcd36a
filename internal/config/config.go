package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/stratify-cli/internal/ai"
	"github.com/KaramelBytes/stratify-cli/internal/session"
)

const dirName = ".stratify"

// Global configuration structure.
type Global struct {
	APIKey          string  `mapstructure:"api_key" yaml:"api_key"`
	DefaultModel    string  `mapstructure:"default_model" yaml:"default_model"`
	DefaultProvider string  `mapstructure:"default_provider" yaml:"default_provider"`
	MaxTokens       int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature" yaml:"temperature"`
	WorkspaceDir    string  `mapstructure:"workspace_dir" yaml:"workspace_dir"`

	// Session and preview sizes
	HistorySize       int `mapstructure:"history_size" yaml:"history_size"`
	SampleHistorySize int `mapstructure:"sample_history_size" yaml:"sample_history_size"`
	PreviewRows       int `mapstructure:"preview_rows" yaml:"preview_rows"`
	AISampleRows      int `mapstructure:"ai_sample_rows" yaml:"ai_sample_rows"`
	ChatSampleRows    int `mapstructure:"chat_sample_rows" yaml:"chat_sample_rows"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Local runtimes (Ollama)
	OllamaHost       string `mapstructure:"ollama_host" yaml:"ollama_host"`
	OllamaTimeoutSec int    `mapstructure:"ollama_timeout_sec" yaml:"ollama_timeout_sec"`
}

// Keys lists every configuration key in display order.
var Keys = []string{
	"api_key", "default_model", "default_provider", "max_tokens", "temperature", "workspace_dir",
	"history_size", "sample_history_size", "preview_rows", "ai_sample_rows", "chat_sample_rows",
	"log_level", "http_timeout_sec", "retry_max_attempts", "retry_base_delay_ms", "retry_max_delay_ms",
	"ollama_host", "ollama_timeout_sec",
}

// Dir returns ~/.stratify.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the configuration to cfgFile, or ~/.stratify/config.yaml when
// cfgFile is empty.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	opts := session.DefaultOptions()
	// every key needs a default so AutomaticEnv values reach Unmarshal
	v.SetDefault("api_key", "")
	v.SetDefault("default_model", "")
	v.SetDefault("workspace_dir", "")
	v.SetDefault("default_provider", ai.ProviderOpenRouter)
	v.SetDefault("max_tokens", 2048)
	v.SetDefault("temperature", 0.4)
	v.SetDefault("history_size", opts.HistorySize)
	v.SetDefault("sample_history_size", opts.SampleHistorySize)
	v.SetDefault("preview_rows", 20)
	v.SetDefault("ai_sample_rows", ai.AnalysisRows)
	v.SetDefault("chat_sample_rows", ai.ChatRows)
	v.SetDefault("log_level", "warn")
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	v.SetDefault("ollama_timeout_sec", 60)
}

// Load reads configuration with precedence env > config file > defaults.
// A .env file in the working directory is loaded first, so STRATIFY_*
// variables can live there; variables already set in the environment win.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	v := viper.New()
	v.SetEnvPrefix("STRATIFY")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var missing viper.ConfigFileNotFoundError
		if !errors.As(err, &missing) && !(cfgFile != "" && errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.DefaultModel == "" {
		c.DefaultModel = ai.DefaultModels[c.DefaultProvider]
	}
	if c.WorkspaceDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.WorkspaceDir = dir
	}
	return &c, nil
}

// Runtime builds the AI runtime for provider, or the default provider when
// provider is empty.
func (c *Global) Runtime(provider string) (ai.Runtime, error) {
	if provider == "" {
		provider = c.DefaultProvider
	}
	timeout := time.Duration(c.HTTPTimeoutSec) * time.Second
	if provider == ai.ProviderOllama {
		timeout = time.Duration(c.OllamaTimeoutSec) * time.Second
	}
	return ai.GetRuntime(provider, ai.RuntimeConfig{
		HTTPTimeout: timeout,
		Retry: ai.Retry{
			MaxAttempts: c.RetryMaxAttempts,
			BaseDelay:   time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
			MaxDelay:    time.Duration(c.RetryMaxDelayMs) * time.Millisecond,
		},
		APIKey: c.APIKey,
		Host:   c.OllamaHost,
	})
}

// Model returns explicit if set, else the configured default for provider.
func (c *Global) Model(provider, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if provider == "" || provider == c.DefaultProvider {
		return c.DefaultModel
	}
	return ai.DefaultModels[provider]
}

// SessionOptions maps history sizes onto session options.
func (c *Global) SessionOptions() session.Options {
	opts := session.DefaultOptions()
	if c.HistorySize > 0 {
		opts.HistorySize = c.HistorySize
	}
	if c.SampleHistorySize > 0 {
		opts.SampleHistorySize = c.SampleHistorySize
	}
	return opts
}
