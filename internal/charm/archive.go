package charm

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Unpack extracts a .charm archive into output, which defaults to the archive
// path without its extension. It returns the directory it wrote to.
func Unpack(src, output string) (string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return "", fmt.Errorf("%s is not a valid charm file: %w", src, err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Err(err).Msgf("failed to close %s", src)
		}
	}()

	if output == "" {
		output = strings.TrimSuffix(src, filepath.Ext(src))
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return "", err
	}
	root := filepath.Clean(output)

	for _, f := range r.File {
		path := filepath.Join(root, f.Name)
		if !within(root, path) {
			return "", fmt.Errorf("illegal file path: %s", path)
		}
		if err := extract(f, path); err != nil {
			return "", fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}
	log.Debug().Msgf("unpacked %d entries from %s into %s", len(r.File), src, output)
	return output, nil
}

// within reports whether path lies strictly inside root.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

func extract(f *zip.File, path string) error {
	if f.FileInfo().IsDir() {
		return os.MkdirAll(path, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	// keep the executable bit; dispatch and hooks need it
	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
