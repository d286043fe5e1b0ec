package analyzer

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DocConfig holds per-repository documentation overrides, read from a
// .docsmith.yml at the checkout root
type DocConfig struct {
	Title    string   `yaml:"title"`
	Audience string   `yaml:"audience"`
	Sections []string `yaml:"sections"`
	Exclude  []string `yaml:"exclude"`
}

const docConfigName = ".docsmith.yml"

// LoadDocConfig reads the repo-level overrides. A missing file returns nil
// without error.
func LoadDocConfig(root string) (*DocConfig, error) {
	data, err := os.ReadFile(filepath.Join(root, docConfigName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cfg DocConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", docConfigName, err)
	}
	return &cfg, nil
}
