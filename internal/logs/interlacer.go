package logs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	fullTimestamp = regexp.MustCompile(`^\S+: (\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})(?:\.\d+)? `)
	timeOnly      = regexp.MustCompile(`^\S+: \d{2}:\d{2}:\d{2}(?:\.\d+)? `)
)

type peeker struct {
	name   string
	r      *bufio.Reader
	closer io.Closer
	next   string
	peeked bool
	eof    bool
}

func (p *peeker) peek() (string, error) {
	if p.peeked {
		return p.next, nil
	}
	if p.eof {
		return "", io.EOF
	}
	line, err := p.r.ReadString('\n')
	if errors.Is(err, io.EOF) {
		p.eof = true
		if line == "" {
			return "", io.EOF
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", p.name, err)
	}
	p.next, p.peeked = line, true
	return line, nil
}

func (p *peeker) pop() string {
	line := p.next
	p.next, p.peeked = "", false
	return line
}

// Interlacer yields the chronologically next line across exported debug-log files.
type Interlacer struct {
	files []*peeker
}

func Open(paths ...string) (*Interlacer, error) {
	il := &Interlacer{}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			il.Close()
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		il.files = append(il.files, &peeker{name: path, r: bufio.NewReader(f), closer: f})
	}
	return il, nil
}

// NewInterlacer reads from already opened sources; names are used in errors.
func NewInterlacer(names []string, readers []io.Reader) *Interlacer {
	il := &Interlacer{}
	for i, r := range readers {
		il.files = append(il.files, &peeker{name: names[i], r: bufio.NewReader(r)})
	}
	return il
}

func (il *Interlacer) Close() error {
	var errs []error
	for _, f := range il.files {
		if f.closer != nil {
			errs = append(errs, f.closer.Close())
		}
	}
	return errors.Join(errs...)
}

// ReadLine returns the next line, newline included, or "" once every file is exhausted.
func (il *Interlacer) ReadLine() (string, error) {
	if len(il.files) == 1 {
		_, err := il.files[0].peek()
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return il.files[0].pop(), nil
	}

	var (
		next     *peeker
		nextTime time.Time
	)
	for _, f := range il.files {
		line, err := il.skipBlank(f)
		if errors.Is(err, io.EOF) {
			continue
		}
		if err != nil {
			return "", err
		}

		ts, err := parseTimestamp(f.name, line)
		if err != nil {
			return "", err
		}
		if next == nil || ts.Before(nextTime) {
			next, nextTime = f, ts
		}
	}

	if next == nil {
		return "", nil
	}
	return next.pop(), nil
}

func (il *Interlacer) skipBlank(f *peeker) (string, error) {
	for {
		line, err := f.peek()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) != "" {
			return line, nil
		}
		f.pop()
	}
}

func parseTimestamp(file, line string) (time.Time, error) {
	if m := fullTimestamp.FindStringSubmatch(line); m != nil {
		ts, err := time.Parse(timestampLayout, m[1])
		if err == nil {
			return ts, nil
		}
	}
	if timeOnly.MatchString(line) {
		return time.Time{}, fmt.Errorf("could not parse line from file %s, no full datetime found. "+
			"Did you export with `juju debug-log --date`?", file)
	}
	return time.Time{}, fmt.Errorf("cannot parse line %q from file %s for unknown reasons", strings.TrimSpace(line), file)
}
