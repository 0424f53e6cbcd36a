package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/stratify-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/stratify-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Stratify configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := settings()
		if err != nil {
			return err
		}
		for _, k := range cfgpkg.Keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", k, configValue(c, k))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := settings()
		if err != nil {
			return err
		}
		if err := setConfigValue(c, args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func configValue(c *cfgpkg.Global, key string) string {
	switch key {
	case "api_key":
		return mask(c.APIKey)
	case "default_model":
		return c.DefaultModel
	case "default_provider":
		return c.DefaultProvider
	case "max_tokens":
		return strconv.Itoa(c.MaxTokens)
	case "temperature":
		return fmt.Sprintf("%.3f", c.Temperature)
	case "workspace_dir":
		return c.WorkspaceDir
	case "history_size":
		return strconv.Itoa(c.HistorySize)
	case "sample_history_size":
		return strconv.Itoa(c.SampleHistorySize)
	case "preview_rows":
		return strconv.Itoa(c.PreviewRows)
	case "ai_sample_rows":
		return strconv.Itoa(c.AISampleRows)
	case "chat_sample_rows":
		return strconv.Itoa(c.ChatSampleRows)
	case "log_level":
		return c.LogLevel
	case "http_timeout_sec":
		return strconv.Itoa(c.HTTPTimeoutSec)
	case "retry_max_attempts":
		return strconv.Itoa(c.RetryMaxAttempts)
	case "retry_base_delay_ms":
		return strconv.Itoa(c.RetryBaseDelayMs)
	case "retry_max_delay_ms":
		return strconv.Itoa(c.RetryMaxDelayMs)
	case "ollama_host":
		return c.OllamaHost
	case "ollama_timeout_sec":
		return strconv.Itoa(c.OllamaTimeoutSec)
	}
	return ""
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	var err error
	switch key {
	case "api_key":
		c.APIKey = val
	case "default_model":
		c.DefaultModel = val
	case "default_provider":
		p := strings.ToLower(strings.TrimSpace(val))
		if p == "local" {
			p = ai.ProviderOllama
		}
		if _, ok := ai.DefaultModels[p]; !ok {
			return fmt.Errorf("invalid default_provider: %s (use %s)", val, strings.Join(ai.Providers(), ", "))
		}
		c.DefaultProvider = p
	case "max_tokens":
		c.MaxTokens, err = atoi()
	case "temperature":
		f, perr := strconv.ParseFloat(val, 64)
		if perr != nil {
			return fmt.Errorf("invalid float for temperature: %w", perr)
		}
		c.Temperature = f
	case "workspace_dir":
		c.WorkspaceDir = val
	case "history_size":
		c.HistorySize, err = atoi()
	case "sample_history_size":
		c.SampleHistorySize, err = atoi()
	case "preview_rows":
		c.PreviewRows, err = atoi()
	case "ai_sample_rows":
		c.AISampleRows, err = atoi()
	case "chat_sample_rows":
		c.ChatSampleRows, err = atoi()
	case "log_level":
		switch val {
		case "debug", "info", "warn", "warning", "error":
			c.LogLevel = val
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "http_timeout_sec":
		c.HTTPTimeoutSec, err = atoi()
	case "retry_max_attempts":
		c.RetryMaxAttempts, err = atoi()
	case "retry_base_delay_ms":
		c.RetryBaseDelayMs, err = atoi()
	case "retry_max_delay_ms":
		c.RetryMaxDelayMs, err = atoi()
	case "ollama_host":
		c.OllamaHost = val
	case "ollama_timeout_sec":
		c.OllamaTimeoutSec, err = atoi()
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
