// Package config loads the per-repository ghchain configuration from
// .ghchain.toml at the repository root, with GHCHAIN_ environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigFileName is the name of the configuration file at the repository root
const ConfigFileName = ".ghchain.toml"

// Config holds the per-repository ghchain settings
type Config struct {
	BaseBranch            string   `koanf:"base_branch"`
	Workflows             []string `koanf:"workflows"`
	BranchNameTemplate    string   `koanf:"branch_name_template"`
	IssuePattern          string   `koanf:"issue_pattern"`
	FixupPrefixes         []string `koanf:"fixup_prefixes"`
	DeleteBranchAfterLand bool     `koanf:"delete_branch_after_land"`

	issueRegexp *regexp.Regexp
}

// Load reads the configuration file at the repository root.
// A missing file yields the defaults.
func Load(repoRoot string) (*Config, error) {
	k := koanf.New(".")

	_ = k.Load(confmap.Provider(map[string]interface{}{
		"base_branch":          "main",
		"branch_name_template": "{author}-{id}",
		"issue_pattern":        `(?i)(?:closes|fixes|resolves)\s+#(\d+)`,
		"fixup_prefixes":       []string{"fixup!", "squash!"},
	}, "."), nil)

	configPath := filepath.Join(repoRoot, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading %s: %w", ConfigFileName, err)
		}
	}

	_ = k.Load(env.Provider("GHCHAIN_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "GHCHAIN_"))
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	issueRe, err := regexp.Compile(cfg.IssuePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid issue_pattern %q: %w", cfg.IssuePattern, err)
	}
	cfg.issueRegexp = issueRe

	return &cfg, nil
}

// IssueRegexp returns the compiled issue reference pattern.
// The first capture group must be the issue number.
func (c *Config) IssueRegexp() *regexp.Regexp {
	return c.issueRegexp
}

// IsFixupMessage reports whether a commit message marks the commit for
// squashing into an earlier one
func (c *Config) IsFixupMessage(message string) bool {
	for _, prefix := range c.FixupPrefixes {
		if strings.HasPrefix(message, prefix) {
			return true
		}
	}
	return false
}

// FormatBranchName renders the branch name template for an author and numeric id.
// Spaces in the author name are flattened so the result is a valid ref name.
func (c *Config) FormatBranchName(author string, id int) string {
	author = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(author), " ", "_"))
	name := strings.ReplaceAll(c.BranchNameTemplate, "{author}", author)
	name = strings.ReplaceAll(name, "{id}", fmt.Sprintf("%d", id))
	return name
}

// BranchNameID extracts the numeric id from a branch name that was produced
// by FormatBranchName. Returns 0 and false when the name does not match.
func (c *Config) BranchNameID(name string) (int, bool) {
	pattern := regexp.QuoteMeta(c.BranchNameTemplate)
	pattern = strings.ReplaceAll(pattern, regexp.QuoteMeta("{author}"), `.+`)
	pattern = strings.ReplaceAll(pattern, regexp.QuoteMeta("{id}"), `(\d+)`)
	re, err := regexp.Compile("^" + pattern + "$")
	if err != nil {
		return 0, false
	}
	m := re.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	var id int
	if _, err := fmt.Sscanf(m[1], "%d", &id); err != nil {
		return 0, false
	}
	return id, true
}
