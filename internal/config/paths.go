package config

import (
	"path/filepath"
)

// Placeholder names understood by the default path templates.
const (
	PlaceholderHome               = "HOME"
	PlaceholderProjectDir         = "PROJECT_DIR"
	PlaceholderClaudeDesktopDir   = "CLAUDE_DESKTOP_DIR"
	PlaceholderClaudeDesktopLogs  = "CLAUDE_DESKTOP_LOGS"
	PlaceholderManagedSettingsDir = "MANAGED_SETTINGS_DIR"
)

// DefaultPaths returns the Claude configuration locations scanned out of the box.
func DefaultPaths() []PathConfig {
	return []PathConfig{
		{Category: "settings", Name: "User Settings", Template: "%HOME%/.claude/settings.json"},
		{Category: "settings", Name: "User Local Settings", Template: "%HOME%/.claude/settings.local.json"},
		{Category: "settings", Name: "Project Settings", Template: "%PROJECT_DIR%/.claude/settings.json"},
		{Category: "settings", Name: "Project Local Settings", Template: "%PROJECT_DIR%/.claude/settings.local.json"},
		{Category: "settings", Name: "Enterprise Managed Settings", Template: "%MANAGED_SETTINGS_DIR%/managed-settings.json"},

		{Category: "memory", Name: "User Memory", Template: "%HOME%/.claude/CLAUDE.md"},
		{Category: "memory", Name: "Project Memory", Template: "%PROJECT_DIR%/CLAUDE.md"},
		{Category: "memory", Name: "Project Local Memory", Template: "%PROJECT_DIR%/CLAUDE.local.md"},

		{Category: "mcp", Name: "User MCP Config", Template: "%HOME%/.claude.json"},
		{Category: "mcp", Name: "Project MCP Config", Template: "%PROJECT_DIR%/.mcp.json"},
		{Category: "mcp", Name: "Enterprise MCP Config", Template: "%MANAGED_SETTINGS_DIR%/managed-mcp.json"},

		{Category: "desktop", Name: "Claude Desktop Config", Template: "%CLAUDE_DESKTOP_DIR%/claude_desktop_config.json"},
		{Category: "desktop", Name: "Claude Desktop Directory", Template: "%CLAUDE_DESKTOP_DIR%"},

		{Category: "logs", Name: "Claude Desktop Logs", Template: "%CLAUDE_DESKTOP_LOGS%"},

		{Category: "agents", Name: "User Agents", Template: "%HOME%/.claude/agents"},

		{Category: "commands", Name: "User Commands", Template: "%HOME%/.claude/commands"},
		{Category: "commands", Name: "Project Commands", Template: "%PROJECT_DIR%/.claude/commands"},
	}
}

// DefaultPlaceholders returns the placeholder values for goos.
// home is the user's home directory and projectDir the directory treated
// as the current project. getenv is only consulted on Windows.
func DefaultPlaceholders(goos, home, projectDir string, getenv func(string) string) map[string]string {
	p := map[string]string{
		PlaceholderHome:       home,
		PlaceholderProjectDir: projectDir,
	}

	switch goos {
	case "darwin":
		desktop := filepath.Join(home, "Library", "Application Support", "Claude")
		p[PlaceholderClaudeDesktopDir] = desktop
		p[PlaceholderClaudeDesktopLogs] = filepath.Join(home, "Library", "Logs", "Claude")
		p[PlaceholderManagedSettingsDir] = "/Library/Application Support/ClaudeCode"
	case "windows":
		appData := getenv("APPDATA")
		if appData == "" {
			appData = home + `\AppData\Roaming`
		}
		desktop := appData + `\Claude`
		p[PlaceholderClaudeDesktopDir] = desktop
		p[PlaceholderClaudeDesktopLogs] = desktop + `\logs`
		p[PlaceholderManagedSettingsDir] = `C:\ProgramData\ClaudeCode`
	default:
		desktop := filepath.Join(home, ".config", "Claude")
		p[PlaceholderClaudeDesktopDir] = desktop
		p[PlaceholderClaudeDesktopLogs] = filepath.Join(desktop, "logs")
		p[PlaceholderManagedSettingsDir] = "/etc/claude-code"
	}

	return p
}
