package monitor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	def := DefaultConfig()
	if cfg != def {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, def)
	}
	if cfg.Context.MaxPatchChars != 3000 || cfg.Context.MaxCommentChars != 1500 || cfg.Context.MaxComments != 3 {
		t.Errorf("stock truncation limits wrong: %+v", cfg.Context)
	}
	if cfg.Classifier.ResolvedFraction != 0.5 {
		t.Errorf("resolved fraction = %v, want 0.5", cfg.Classifier.ResolvedFraction)
	}
}

func TestLoadConfigOverridesAndFills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `llm:
  model: gpt-4.1
context:
  max_patches: 8
classifier:
  resolved_fraction: 0.6
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LLM.Model != "gpt-4.1" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.Context.MaxPatches != 8 {
		t.Errorf("max patches = %d, want 8", cfg.Context.MaxPatches)
	}
	// Unset knobs fall back to the defaults.
	if cfg.Context.MaxPatchChars != 3000 {
		t.Errorf("max patch chars = %d, want default 3000", cfg.Context.MaxPatchChars)
	}
	if cfg.Classifier.ResolvedFraction != 0.6 {
		t.Errorf("resolved fraction = %v, want 0.6", cfg.Classifier.ResolvedFraction)
	}
	if cfg.Classifier.InspectPatches != 3 {
		t.Errorf("inspect patches = %d, want default 3", cfg.Classifier.InspectPatches)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}
