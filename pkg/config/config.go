// Package config loads the HCL configuration for automation pipelines
// built on the draftforge clients.
package config

import (
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the root of a draftforge HCL file.
type Config struct {
	GenAI      *GenAIConfig      `hcl:"genai,block"`
	DocConvert *DocConvertConfig `hcl:"docconvert,block"`
	Tabular    *TabularConfig    `hcl:"tabular,block"`
}

// GenAIConfig configures the generative AI client. The API key is never
// stored in configuration; APIKeyEnv names the environment variable that
// holds it.
type GenAIConfig struct {
	Model        string `hcl:"model,optional"`
	EmbedModel   string `hcl:"embed_model,optional"`
	ImageModel   string `hcl:"image_model,optional"`
	BaseURL      string `hcl:"base_url,optional"`
	APIKeyEnv    string `hcl:"api_key_env,optional"`
	RetryCount   int    `hcl:"retry_count,optional"`
	RetryDelayMS int    `hcl:"retry_delay_ms,optional"`
}

// RetryDelay returns the configured delay as a duration.
func (c *GenAIConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

// APIKey resolves the key from the configured environment variable.
func (c *GenAIConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// DocConvertConfig configures the document conversion client.
type DocConvertConfig struct {
	PollIntervalMS int `hcl:"poll_interval_ms,optional"`
	PollAttempts   int `hcl:"poll_attempts,optional"`
}

// TabularConfig configures the tabular data client.
type TabularConfig struct {
	SpreadsheetID string `hcl:"spreadsheet_id"`
	Sheet         string `hcl:"sheet,optional"`
}

func (c *Config) validate() error {
	errs := validation.Errors{}
	if c.GenAI != nil {
		errs["genai.retry_count"] = validation.Validate(c.GenAI.RetryCount, validation.Min(0))
		errs["genai.retry_delay_ms"] = validation.Validate(c.GenAI.RetryDelayMS, validation.Min(0))
	}
	if c.Tabular != nil {
		errs["tabular.spreadsheet_id"] = validation.Validate(c.Tabular.SpreadsheetID, validation.Required)
	}
	return errs.Filter()
}

// Load reads and validates a draftforge HCL configuration file.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}
