package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"flowtrace"
	"flowtrace/internal/filter"
)

const manifestName = "flowtrace.toml"

const noManifestMessage = "no flowtrace.toml found\nrun \"flowtrace init\" to create one, or pass the manifest path explicitly, e.g.:\n  flowtrace validate path/to/flowtrace.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config manifestConfig
}

type manifestConfig struct {
	Project projectSection `toml:"project"`
	Scan    scanSection    `toml:"scan"`
	Agent   agentSection   `toml:"agent"`
}

type projectSection struct {
	Name string `toml:"name"`
}

type scanSection struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type agentSection struct {
	Path         string `toml:"path"`
	Console      bool   `toml:"console"`
	MaxArgLength int    `toml:"max_arg_length"`
}

// findFlowtraceToml walks from startDir toward the filesystem root and
// returns the first flowtrace.toml it passes.
func findFlowtraceToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for dir := start; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, manifestName)
		switch _, err := os.Stat(candidate); {
		case err == nil:
			return candidate, true, nil
		case !errors.Is(err, os.ErrNotExist):
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		if filepath.Dir(dir) == dir {
			return "", false, nil
		}
	}
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findFlowtraceToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, _, err := loadManifestConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// loadManifestConfig decodes and checks a manifest. Unknown keys come
// back as warnings so a typo never silently disables a setting.
func loadManifestConfig(path string) (manifestConfig, []string, error) {
	var cfg manifestConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return manifestConfig{}, nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return manifestConfig{}, nil, fmt.Errorf("%s: missing [project]", path)
	}
	if !meta.IsDefined("project", "name") || strings.TrimSpace(cfg.Project.Name) == "" {
		return manifestConfig{}, nil, fmt.Errorf("%s: missing [project].name", path)
	}
	if meta.IsDefined("agent", "path") && strings.TrimSpace(cfg.Agent.Path) == "" {
		return manifestConfig{}, nil, fmt.Errorf("%s: [agent].path must not be empty", path)
	}
	if meta.IsDefined("agent", "max_arg_length") && cfg.Agent.MaxArgLength < 0 {
		return manifestConfig{}, nil, fmt.Errorf("%s: [agent].max_arg_length must not be negative", path)
	}

	if len(cfg.Scan.Include) == 0 {
		cfg.Scan.Include = filter.DefaultInclude
	}
	if !meta.IsDefined("agent", "path") {
		cfg.Agent.Path = flowtrace.DefaultPath
	}
	if !meta.IsDefined("agent", "max_arg_length") {
		cfg.Agent.MaxArgLength = flowtrace.DefaultMaxArgLength
	}

	var warnings []string
	for _, key := range meta.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("unknown key %q", key.String()))
	}
	return cfg, warnings, nil
}
