package charm

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

var DefaultLocations = []string{"./src", "./lib"}

// Location maps a local directory onto a directory in the archive.
type Location struct {
	Src string
	Dst string
}

// ParseLocation parses `src[:dst]`; dst defaults to src relative to the charm root.
func ParseLocation(s string) (Location, error) {
	src, dst, ok := strings.Cut(s, ":")
	if src == "" {
		return Location{}, fmt.Errorf("invalid location: %q", s)
	}
	if !ok {
		dst = src
	}
	dst = strings.Trim(path.Clean(filepath.ToSlash(dst)), "/")
	if dst == "." || strings.HasPrefix(dst, "..") {
		return Location{}, fmt.Errorf("invalid location: %q; destination must be inside the charm", s)
	}
	return Location{Src: src, Dst: dst}, nil
}

// FindLocalCharm returns the first .charm file in dir.
func FindLocalCharm(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.charm"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no .charm file found in %s", dir)
	}
	slices.Sort(matches)
	return matches[0], nil
}

type ChangeType string

const (
	ChangeCopy    ChangeType = "copy"
	ChangeReplace ChangeType = "replace"
	ChangeDelete  ChangeType = "delete"
)

// Change is one difference between a local dir and the archive. Src is empty for deletions.
type Change struct {
	Type ChangeType
	Src  string
	Dst  string
}

func (c Change) Describe(dryRun bool) string {
	verb := string(c.Type)
	if dryRun {
		verb = "would " + verb
	}
	if c.Type == ChangeDelete {
		return fmt.Sprintf("%s <zipped charm root>/%s", verb, c.Dst)
	}
	return fmt.Sprintf("%s %s --> <zipped charm root>/%s", verb, c.Src, c.Dst)
}

// Diff compares the files under loc.Src with the archive entries under loc.Dst.
func Diff(archive map[string]*zip.File, loc Location) ([]Change, error) {
	var changes []Change
	local := map[string]bool{}

	err := filepath.WalkDir(loc.Src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(loc.Src, p)
		if err != nil {
			return err
		}
		name := path.Join(loc.Dst, filepath.ToSlash(rel))
		local[name] = true

		entry, ok := archive[name]
		if !ok {
			changes = append(changes, Change{Type: ChangeCopy, Src: p, Dst: name})
			return nil
		}
		same, err := sameContent(p, entry)
		if err != nil {
			return err
		}
		if !same {
			changes = append(changes, Change{Type: ChangeReplace, Src: p, Dst: name})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prefix := loc.Dst + "/"
	var deleted []string
	for name, f := range archive {
		if strings.HasPrefix(name, prefix) && !f.FileInfo().IsDir() && !local[name] {
			deleted = append(deleted, name)
		}
	}
	slices.Sort(deleted)
	for _, name := range deleted {
		changes = append(changes, Change{Type: ChangeDelete, Dst: name})
	}
	return changes, nil
}

func sameContent(localPath string, entry *zip.File) (bool, error) {
	want, err := os.ReadFile(localPath)
	if err != nil {
		return false, err
	}
	if uint64(len(want)) != entry.UncompressedSize64 {
		return false, nil
	}
	rc, err := entry.Open()
	if err != nil {
		return false, err
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		return false, err
	}
	return bytes.Equal(want, got), nil
}

// Update pushes the local locations into the charm archive and replaces it.
func Update(charmPath string, locations []string, dryRun bool, out io.Writer) ([]Change, error) {
	if len(locations) == 0 {
		locations = DefaultLocations
	}
	var locs []Location
	for _, l := range locations {
		loc, err := ParseLocation(l)
		if err != nil {
			return nil, err
		}
		if info, err := os.Stat(loc.Src); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("invalid location: %q, should be a valid path", loc.Src)
		}
		locs = append(locs, loc)
	}
	log.Info().Msgf("updating charm %s with %v (dry run: %v)", charmPath, locations, dryRun)

	r, err := zip.OpenReader(charmPath)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid charm file: %w", charmPath, err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Err(err).Msgf("failed to close %s", charmPath)
		}
	}()

	entries := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		entries[f.Name] = f
	}

	var changes []Change
	for _, loc := range locs {
		fmt.Fprintf(out, "syncing %s --> %s...\n", loc.Src, charmPath)
		c, err := Diff(entries, loc)
		if err != nil {
			return nil, err
		}
		for _, change := range c {
			fmt.Fprintln(out, change.Describe(dryRun))
		}
		changes = append(changes, c...)
	}

	if dryRun || len(changes) == 0 {
		fmt.Fprintln(out, "all done.")
		return changes, nil
	}
	if err := rewrite(charmPath, r.File, changes); err != nil {
		return nil, err
	}
	fmt.Fprintln(out, "all done.")
	return changes, nil
}

// rewrite writes a new archive next to the old one and renames it into place.
func rewrite(charmPath string, files []*zip.File, changes []Change) error {
	skip := map[string]bool{}
	var additions []Change
	for _, c := range changes {
		skip[c.Dst] = true
		if c.Type != ChangeDelete {
			additions = append(additions, c)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(charmPath), ".jhack-update-*.charm")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := zip.NewWriter(tmp)
	for _, f := range files {
		if skip[f.Name] {
			continue
		}
		if err := w.Copy(f); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to copy %s: %w", f.Name, err)
		}
	}
	for _, c := range additions {
		if err := addFile(w, c.Src, c.Dst); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), charmPath)
}

func addFile(w *zip.Writer, src, name string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := w.CreateHeader(header)
	if err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(dst, f)
	return err
}
