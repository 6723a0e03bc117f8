package snap_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"ccsnap/internal/model"
	"ccsnap/internal/snap"
)

func tmpl(category, name, template string) model.PathTemplate {
	return model.PathTemplate{Category: category, Name: name, Template: template, Enabled: true}
}

func envFrom(m map[string]string) snap.LookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestResolvePaths(t *testing.T) {
	home := filepath.FromSlash("/home/u")

	tests := []struct {
		name      string
		templates []model.PathTemplate
		config    map[string]string
		env       map[string]string
		want      []string
	}{
		{
			name:      "substitutes configured placeholder",
			templates: []model.PathTemplate{tmpl("settings", "User Settings", "%HOME%/.claude/settings.json")},
			config:    map[string]string{"HOME": home},
			want:      []string{filepath.Join(home, ".claude", "settings.json")},
		},
		{
			name:      "falls back to environment",
			templates: []model.PathTemplate{tmpl("memory", "User Memory", "%HOME%/.claude/CLAUDE.md")},
			env:       map[string]string{"HOME": home},
			want:      []string{filepath.Join(home, ".claude", "CLAUDE.md")},
		},
		{
			name:      "configured value wins over environment",
			templates: []model.PathTemplate{tmpl("memory", "User Memory", "%HOME%/CLAUDE.md")},
			config:    map[string]string{"HOME": home},
			env:       map[string]string{"HOME": filepath.FromSlash("/elsewhere")},
			want:      []string{filepath.Join(home, "CLAUDE.md")},
		},
		{
			name:      "normalizes backslashes and cleans",
			templates: []model.PathTemplate{tmpl("mcp", "User MCP", `%HOME%\.claude\..\.claude.json`)},
			config:    map[string]string{"HOME": home},
			want:      []string{filepath.Join(home, ".claude.json")},
		},
		{
			name: "skips disabled and keeps order",
			templates: []model.PathTemplate{
				tmpl("b", "second", "%HOME%/b"),
				{Category: "x", Name: "off", Template: "%UNSET%/x", Enabled: false},
				tmpl("a", "first", "%HOME%/a"),
			},
			config: map[string]string{"HOME": home},
			want:   []string{filepath.Join(home, "b"), filepath.Join(home, "a")},
		},
		{
			name:      "template without placeholders",
			templates: []model.PathTemplate{tmpl("settings", "Managed", "/etc/claude-code/managed-settings.json")},
			want:      []string{filepath.Clean(filepath.FromSlash("/etc/claude-code/managed-settings.json"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := snap.ScanConfiguration{Templates: tt.templates, Placeholders: tt.config}
			got, err := snap.ResolvePaths(cfg, envFrom(tt.env))
			if err != nil {
				t.Fatalf("ResolvePaths() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ResolvePaths() returned %d paths, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				if got[i].Path != w {
					t.Errorf("path[%d] = %q, want %q", i, got[i].Path, w)
				}
			}
		})
	}
}

func TestResolvePaths_KeepsTemplate(t *testing.T) {
	cfg := snap.ScanConfiguration{
		Templates:    []model.PathTemplate{tmpl("settings", "User Settings", "%HOME%/.claude/settings.json")},
		Placeholders: map[string]string{"HOME": filepath.FromSlash("/home/u")},
	}
	got, err := snap.ResolvePaths(cfg, envFrom(nil))
	if err != nil {
		t.Fatalf("ResolvePaths() error = %v", err)
	}
	if got[0].Template != "%HOME%/.claude/settings.json" || got[0].Category != "settings" || got[0].Name != "User Settings" {
		t.Errorf("ResolvePaths()[0] = %+v", got[0])
	}
}

func TestResolvePaths_Errors(t *testing.T) {
	home := filepath.FromSlash("/home/u")

	tests := []struct {
		name       string
		templates  []model.PathTemplate
		config     map[string]string
		wantReason string
	}{
		{
			name:       "missing placeholder",
			templates:  []model.PathTemplate{tmpl("settings", "Project Settings", "%PROJECT_DIR%/.claude/settings.json")},
			wantReason: "placeholder %PROJECT_DIR% is not set",
		},
		{
			name:       "empty placeholder value",
			templates:  []model.PathTemplate{tmpl("settings", "Project Settings", "%PROJECT_DIR%/x")},
			config:     map[string]string{"PROJECT_DIR": ""},
			wantReason: "placeholder %PROJECT_DIR% is not set",
		},
		{
			name: "duplicate entry even when disabled",
			templates: []model.PathTemplate{
				tmpl("settings", "User Settings", "%HOME%/a"),
				{Category: "settings", Name: "User Settings", Template: "%HOME%/b"},
			},
			config:     map[string]string{"HOME": home},
			wantReason: "duplicate path entry",
		},
		{
			name:       "missing name",
			templates:  []model.PathTemplate{tmpl("settings", " ", "%HOME%/a")},
			config:     map[string]string{"HOME": home},
			wantReason: "category and name are required",
		},
		{
			name:       "empty template",
			templates:  []model.PathTemplate{tmpl("settings", "Blank", "")},
			wantReason: "empty path template",
		},
		{
			name:       "relative result",
			templates:  []model.PathTemplate{tmpl("settings", "Relative", "%DIR%/settings.json")},
			config:     map[string]string{"DIR": "relative"},
			wantReason: "resolved path is not absolute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := snap.ScanConfiguration{Templates: tt.templates, Placeholders: tt.config}
			_, err := snap.ResolvePaths(cfg, envFrom(nil))

			var cfgErr *snap.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("ResolvePaths() error = %v, want *ConfigError", err)
			}
			if !strings.Contains(cfgErr.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want it to contain %q", cfgErr.Reason, tt.wantReason)
			}
		})
	}
}
