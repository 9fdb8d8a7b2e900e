package flowtrace

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Path != "flowtrace.jsonl" {
		t.Fatalf("expected default path flowtrace.jsonl, got %q", cfg.Path)
	}
	if cfg.Console {
		t.Fatal("expected console mirror off by default")
	}
	if cfg.MaxArgLength != 1000 {
		t.Fatalf("expected max arg length 1000, got %d", cfg.MaxArgLength)
	}
	if cfg.ModulePrefix != "" {
		t.Fatalf("expected empty module prefix, got %q", cfg.ModulePrefix)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"empty path", Config{Path: "", MaxArgLength: 1000}, true},
		{"negative bound", Config{Path: "x.jsonl", MaxArgLength: -1}, true},
		{"zero bound disables truncation", Config{Path: "x.jsonl", MaxArgLength: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
		})
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults with empty environment, got %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FLOWTRACE_PATH", "/tmp/custom.jsonl")
	t.Setenv("FLOWTRACE_CONSOLE", "true")
	t.Setenv("FLOWTRACE_MAX_ARG_LENGTH", "64")
	t.Setenv("FLOWTRACE_MODULE_PREFIX", "billing")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if cfg.Path != "/tmp/custom.jsonl" {
		t.Fatalf("expected overridden path, got %q", cfg.Path)
	}
	if !cfg.Console {
		t.Fatal("expected console mirror on")
	}
	if cfg.MaxArgLength != 64 {
		t.Fatalf("expected max arg length 64, got %d", cfg.MaxArgLength)
	}
	if cfg.ModulePrefix != "billing" {
		t.Fatalf("expected module prefix billing, got %q", cfg.ModulePrefix)
	}
}

func TestLoadEnvRejectsInvalid(t *testing.T) {
	t.Setenv("FLOWTRACE_MAX_ARG_LENGTH", "-5")

	if _, err := LoadEnv(); err == nil {
		t.Fatal("expected error for negative max arg length")
	}
}
