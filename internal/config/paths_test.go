package config

import (
	"path/filepath"
	"regexp"
	"testing"
)

func TestDefaultPaths(t *testing.T) {
	paths := DefaultPaths()
	if len(paths) != 17 {
		t.Fatalf("len(DefaultPaths()) = %d, want 17", len(paths))
	}

	known := map[string]bool{
		PlaceholderHome:               true,
		PlaceholderProjectDir:         true,
		PlaceholderClaudeDesktopDir:   true,
		PlaceholderClaudeDesktopLogs:  true,
		PlaceholderManagedSettingsDir: true,
	}
	placeholder := regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

	seen := map[[2]string]bool{}
	categories := map[string]int{}
	for _, p := range paths {
		key := [2]string{p.Category, p.Name}
		if seen[key] {
			t.Errorf("duplicate path %s/%s", p.Category, p.Name)
		}
		seen[key] = true
		categories[p.Category]++

		if p.Enabled != nil {
			t.Errorf("%s: Enabled should be unset so it defaults to true", p.Name)
		}
		for _, m := range placeholder.FindAllStringSubmatch(p.Template, -1) {
			if !known[m[1]] {
				t.Errorf("%s uses unknown placeholder %s", p.Name, m[1])
			}
		}
	}

	for _, c := range []string{"settings", "memory", "mcp", "desktop", "logs", "agents", "commands"} {
		if categories[c] == 0 {
			t.Errorf("no default path in category %q", c)
		}
	}
	if !seen[[2]string{"logs", "Claude Desktop Logs"}] {
		t.Error("missing Claude Desktop Logs entry")
	}
}

func TestDefaultPlaceholders(t *testing.T) {
	noEnv := func(string) string { return "" }

	tests := []struct {
		name   string
		goos   string
		home   string
		getenv func(string) string
		want   map[string]string
	}{
		{
			name:   "linux",
			goos:   "linux",
			home:   "/home/u",
			getenv: noEnv,
			want: map[string]string{
				PlaceholderHome:               "/home/u",
				PlaceholderProjectDir:         "/work",
				PlaceholderClaudeDesktopDir:   filepath.Join("/home/u", ".config", "Claude"),
				PlaceholderClaudeDesktopLogs:  filepath.Join("/home/u", ".config", "Claude", "logs"),
				PlaceholderManagedSettingsDir: "/etc/claude-code",
			},
		},
		{
			name:   "darwin",
			goos:   "darwin",
			home:   "/Users/u",
			getenv: noEnv,
			want: map[string]string{
				PlaceholderHome:               "/Users/u",
				PlaceholderProjectDir:         "/work",
				PlaceholderClaudeDesktopDir:   filepath.Join("/Users/u", "Library", "Application Support", "Claude"),
				PlaceholderClaudeDesktopLogs:  filepath.Join("/Users/u", "Library", "Logs", "Claude"),
				PlaceholderManagedSettingsDir: "/Library/Application Support/ClaudeCode",
			},
		},
		{
			name: "windows with APPDATA",
			goos: "windows",
			home: `C:\Users\u`,
			getenv: func(k string) string {
				if k == "APPDATA" {
					return `D:\Roaming`
				}
				return ""
			},
			want: map[string]string{
				PlaceholderHome:               `C:\Users\u`,
				PlaceholderProjectDir:         "/work",
				PlaceholderClaudeDesktopDir:   `D:\Roaming\Claude`,
				PlaceholderClaudeDesktopLogs:  `D:\Roaming\Claude\logs`,
				PlaceholderManagedSettingsDir: `C:\ProgramData\ClaudeCode`,
			},
		},
		{
			name:   "windows without APPDATA",
			goos:   "windows",
			home:   `C:\Users\u`,
			getenv: noEnv,
			want: map[string]string{
				PlaceholderHome:               `C:\Users\u`,
				PlaceholderProjectDir:         "/work",
				PlaceholderClaudeDesktopDir:   `C:\Users\u\AppData\Roaming\Claude`,
				PlaceholderClaudeDesktopLogs:  `C:\Users\u\AppData\Roaming\Claude\logs`,
				PlaceholderManagedSettingsDir: `C:\ProgramData\ClaudeCode`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultPlaceholders(tt.goos, tt.home, "/work", tt.getenv)
			if len(got) != len(tt.want) {
				t.Errorf("len = %d, want %d", len(got), len(tt.want))
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
