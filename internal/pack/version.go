package pack

import (
	"bufio"
	"os"
	"strings"

	"github.com/certik/femhub-notebook/internal/errors"

	"gopkg.in/yaml.v2"
)

// Manifest names the package being built
type Manifest struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Validate checks the manifest fields
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.InvalidInput("package name is required")
	}
	if strings.TrimSpace(m.Version) == "" {
		return errors.InvalidInput("package version is required")
	}
	return nil
}

// LoadManifest reads a package.yml manifest
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read manifest")
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReadSetupVersion extracts the version string from a Python-style setup
// file. It looks for a line of the form
//
//	version = '0.2.7',
//
// and returns the single-quoted value. The quoting is required, matching
// what the setup file itself documents.
func ReadSetupVersion(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to open setup file")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "version") {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, "version"))
		if !strings.HasPrefix(rest, "=") {
			continue
		}
		rest = strings.TrimSpace(rest[1:])
		start := strings.Index(rest, "'")
		if start == -1 {
			continue
		}
		end := strings.Index(rest[start+1:], "'")
		if end == -1 {
			return "", errors.InvalidInput("malformed version line in " + path)
		}
		v := rest[start+1 : start+1+end]
		if v == "" {
			return "", errors.InvalidInput("empty version string in " + path)
		}
		return v, nil
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrap(err, "failed to read setup file")
	}
	return "", errors.NotFound("version line in " + path)
}
