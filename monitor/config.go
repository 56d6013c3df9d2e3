package monitor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"patch_monitor/analyzer"
	"patch_monitor/patchwork"
)

// LLMConfig selects the text-generation model. The API key is never read
// from the file; it comes from the OPENAI_API_KEY environment variable.
type LLMConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// ContextConfig holds the truncation limits applied while assembling the
// patchset document.
type ContextConfig struct {
	MaxPatches      int `yaml:"max_patches"`
	MaxPatchChars   int `yaml:"max_patch_chars"`
	MaxCommentChars int `yaml:"max_comment_chars"`
	MaxComments     int `yaml:"max_comments"`
}

// Config is the runtime configuration for the monitor.
type Config struct {
	LLM        LLMConfig                  `yaml:"llm"`
	Context    ContextConfig              `yaml:"context"`
	Classifier patchwork.ClassifierPolicy `yaml:"classifier"`
}

// DefaultConfig returns the stock policy constants.
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{Model: "gpt-4o-mini"},
		Context: ContextConfig{
			MaxPatches:      5,
			MaxPatchChars:   3000,
			MaxCommentChars: 1500,
			MaxComments:     3,
		},
		Classifier: patchwork.DefaultClassifierPolicy(),
	}
}

// LoadConfig reads a YAML config file on top of the defaults. A missing file
// is not an error; it just yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.LLM.Model == "" {
		c.LLM.Model = def.LLM.Model
	}
	if c.Context.MaxPatches <= 0 {
		c.Context.MaxPatches = def.Context.MaxPatches
	}
	if c.Context.MaxPatchChars <= 0 {
		c.Context.MaxPatchChars = def.Context.MaxPatchChars
	}
	if c.Context.MaxCommentChars <= 0 {
		c.Context.MaxCommentChars = def.Context.MaxCommentChars
	}
	if c.Context.MaxComments <= 0 {
		c.Context.MaxComments = def.Context.MaxComments
	}
	if c.Classifier.ResolvedFraction <= 0 {
		c.Classifier.ResolvedFraction = def.Classifier.ResolvedFraction
	}
	if c.Classifier.InspectPatches <= 0 {
		c.Classifier.InspectPatches = def.Classifier.InspectPatches
	}
}

// ContextOptions converts the configured limits for the assembler.
func (c Config) ContextOptions(includeComments bool) analyzer.ContextOptions {
	return analyzer.ContextOptions{
		MaxPatches:      c.Context.MaxPatches,
		MaxPatchChars:   c.Context.MaxPatchChars,
		MaxCommentChars: c.Context.MaxCommentChars,
		MaxComments:     c.Context.MaxComments,
		IncludeComments: includeComments,
	}
}
