package charm

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/canonical/jhack/internal/endpoints"
)

type Base struct {
	Name          string   `yaml:"name"`
	Channel       string   `yaml:"channel"`
	Architectures []string `yaml:"architectures"`
}

// Manifest is what charmcraft records about a packed charm.
type Manifest struct {
	CharmcraftVersion   string `yaml:"charmcraft-version"`
	CharmcraftStartedAt string `yaml:"charmcraft-started-at"`
	Bases               []Base `yaml:"bases"`

	// Name and Metadata come from metadata.yaml, when the archive has one.
	Name     string              `yaml:"-"`
	Metadata *endpoints.Metadata `yaml:"-"`
}

func readEntry(r *zip.Reader, name string) ([]byte, error) {
	f, err := r.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// ReadManifest reads manifest.yaml and metadata.yaml from a .charm archive.
func ReadManifest(path string) (*Manifest, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid charm file: %w", path, err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Err(err).Msgf("failed to close %s", path)
		}
	}()

	raw, err := readEntry(&r.Reader, "manifest.yaml")
	if err != nil {
		return nil, fmt.Errorf("manifest.yaml not found in %s: %w", path, err)
	}
	manifest := &Manifest{}
	if err := yaml.Unmarshal(raw, manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest.yaml: %w", err)
	}

	raw, err = readEntry(&r.Reader, "metadata.yaml")
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().Msgf("%s has no metadata.yaml", path)
	case err != nil:
		return nil, err
	default:
		meta, err := endpoints.ParseMetadata(raw)
		if err != nil {
			return nil, err
		}
		manifest.Metadata = meta
		manifest.Name = meta.Name
	}
	return manifest, nil
}
