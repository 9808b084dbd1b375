// Package manifest loads and saves the project manifest (lava.toml) that
// tells the CLI driver which class paths to register.
//
// Grounded on nova's internal/pkg/config.go (sola.toml package
// configuration): same LoadConfig/Save/GenerateDefault shape over
// github.com/pelletier/go-toml/v2, adapted from package metadata
// (name/version/namespace/dependencies, which this system has no use
// for) to class-path configuration, the one piece of ambient project
// configuration this loader actually needs.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the manifest's canonical file name.
const ConfigFileName = "lava.toml"

// ProjectInfo mirrors nova's PackageInfo, trimmed to what this loader
// actually consults.
type ProjectInfo struct {
	Name string `toml:"name"`
}

// Config is the parsed contents of lava.toml.
type Config struct {
	Project    ProjectInfo `toml:"project"`
	ClassPaths []string    `toml:"class_paths"`
}

// Load reads and parses path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lava: manifest: read %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("lava: manifest: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to path with explanatory comments, in the style of
// nova's generateConfigWithComments.
func (c *Config) Save(path string) error {
	var sb strings.Builder
	sb.WriteString("# directories searched for <name>.lclass, in order\n")
	sb.WriteString("class_paths = [\n")
	for _, p := range c.ClassPaths {
		fmt.Fprintf(&sb, "  %q,\n", p)
	}
	sb.WriteString("]\n\n")
	sb.WriteString("[project]\n")
	sb.WriteString("# project name, informational only\n")
	fmt.Fprintf(&sb, "name = %q\n", c.Project.Name)

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("lava: manifest: write %s: %w", path, err)
	}
	return nil
}

// GenerateDefault builds a default manifest for the project rooted at
// dir: its own name and a single class path, ".".
func GenerateDefault(dir string) *Config {
	name := filepath.Base(dir)
	if name == "" || name == "." || name == "/" {
		name = "lava-project"
	}
	return &Config{
		Project:    ProjectInfo{Name: name},
		ClassPaths: []string{"."},
	}
}
