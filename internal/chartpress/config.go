package chartpress

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Config models the subset of chartpress.yaml that chartship reads.
// Fields the build tool understands but chartship does not care about
// (build args, version tags, path filters) are ignored on purpose:
// the tool remains the owner of its own configuration.
type Config struct {
	// Charts lists the charts the tool builds and publishes.
	Charts []Chart `yaml:"charts"`
}

// Chart describes one chart entry in chartpress.yaml.
type Chart struct {
	// Name is the chart name.
	Name string `yaml:"name"`

	// ImagePrefix is prepended to each image key to form the full
	// repository name (e.g. "jupyterhub/k8s-" + "binderhub").
	ImagePrefix string `yaml:"imagePrefix"`

	// Repo identifies where the packaged chart is published.
	Repo Repo `yaml:"repo"`

	// Images maps image name to its build definition. Only the keys
	// matter to chartship; the definitions are for the tool.
	Images map[string]Image `yaml:"images"`
}

// Repo is the chart publication target from chartpress.yaml.
type Repo struct {
	// Git is the GitHub repository holding the published charts.
	Git string `yaml:"git"`

	// Published is the URL the chart repository is served from.
	Published string `yaml:"published"`
}

// Image is one image build definition. chartship never builds images;
// these fields exist so a parse does not silently drop data a future
// version might want to report on.
type Image struct {
	// ValuesPath is the dotted path in the chart's values that
	// receives the built image tag.
	ValuesPath string `yaml:"valuesPath"`

	// ContextPath is the Docker build context, relative to the
	// repository root.
	ContextPath string `yaml:"contextPath"`

	// DockerfilePath overrides the Dockerfile location.
	DockerfilePath string `yaml:"dockerfilePath"`
}

// LoadConfig reads and parses the build tool's configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

// ImageRepositories returns the full repository names a push build
// will publish to, sorted for deterministic output. Image map
// iteration order is randomized by the runtime, hence the sort.
func (c *Config) ImageRepositories() []string {
	var repos []string
	for _, chart := range c.Charts {
		for imageName := range chart.Images {
			repos = append(repos, chart.ImagePrefix+imageName)
		}
	}
	sort.Strings(repos)
	return repos
}
