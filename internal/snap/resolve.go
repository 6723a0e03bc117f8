package snap

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"ccsnap/internal/model"
)

var placeholderPattern = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

// ScanConfiguration is everything the orchestrator needs to run one scan.
type ScanConfiguration struct {
	Templates []model.PathTemplate

	// Placeholders maps %VAR% names to values. Names missing here are
	// looked up in the process environment.
	Placeholders map[string]string

	SkipContent    bool
	Parallelism    int
	PathTimeout    time.Duration
	MaxContentSize int64 // 0 means unlimited
}

// ResolvedPath is an enabled template with all placeholders substituted.
type ResolvedPath struct {
	Category string
	Name     string
	Template string
	Path     string
}

// LookupFunc returns the value of a placeholder and whether it was set.
type LookupFunc func(name string) (string, bool)

// lookup returns a LookupFunc that consults the configured placeholders
// before falling back to env.
func (c ScanConfiguration) lookup(env LookupFunc) LookupFunc {
	return func(name string) (string, bool) {
		if v, ok := c.Placeholders[name]; ok {
			return v, true
		}
		if env == nil {
			return "", false
		}
		return env(name)
	}
}

// ResolvePaths validates the templates and resolves every enabled one into
// an absolute, cleaned path for the current OS. Order is preserved.
func ResolvePaths(cfg ScanConfiguration, env LookupFunc) ([]ResolvedPath, error) {
	if env == nil {
		env = os.LookupEnv
	}
	lookup := cfg.lookup(env)

	seen := make(map[model.PathKey]bool, len(cfg.Templates))
	var resolved []ResolvedPath

	for _, t := range cfg.Templates {
		if strings.TrimSpace(t.Category) == "" || strings.TrimSpace(t.Name) == "" {
			return nil, &ConfigError{Category: t.Category, Name: t.Name, Reason: "category and name are required"}
		}
		key := model.PathKey{Category: t.Category, Name: t.Name}
		if seen[key] {
			return nil, &ConfigError{Category: t.Category, Name: t.Name, Reason: "duplicate path entry"}
		}
		seen[key] = true

		if !t.Enabled {
			continue
		}

		path, err := resolveTemplate(t, lookup)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, ResolvedPath{
			Category: t.Category,
			Name:     t.Name,
			Template: t.Template,
			Path:     path,
		})
	}

	return resolved, nil
}

func resolveTemplate(t model.PathTemplate, lookup LookupFunc) (string, error) {
	if strings.TrimSpace(t.Template) == "" {
		return "", &ConfigError{Category: t.Category, Name: t.Name, Reason: "empty path template"}
	}

	var missing string
	expanded := placeholderPattern.ReplaceAllStringFunc(t.Template, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := lookup(name)
		if !ok || v == "" {
			if missing == "" {
				missing = name
			}
			return m
		}
		return v
	})
	if missing != "" {
		return "", &ConfigError{Category: t.Category, Name: t.Name, Reason: "placeholder %" + missing + "% is not set"}
	}

	path := filepath.Clean(normalizeSeparators(expanded))
	if !filepath.IsAbs(path) {
		return "", &ConfigError{Category: t.Category, Name: t.Name, Reason: "resolved path is not absolute: " + path}
	}
	return path, nil
}

// normalizeSeparators rewrites both slash styles to the OS separator so one
// template can serve every platform.
func normalizeSeparators(p string) string {
	sep := string(filepath.Separator)
	p = strings.ReplaceAll(p, "\\", sep)
	return strings.ReplaceAll(p, "/", sep)
}
