package logs

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/jhack/pkg/testutil"
)

func readAll(t *testing.T, il *Interlacer) ([]string, error) {
	t.Helper()
	var lines []string
	for {
		line, err := il.ReadLine()
		if err != nil {
			return lines, err
		}
		if line == "" {
			return lines, nil
		}
		lines = append(lines, line)
	}
}

func fixture(t *testing.T, name string) string {
	return filepath.Join(testutil.FixtureDir(t), name)
}

func TestSingleFileIsReadAsIs(t *testing.T) {
	il, err := Open(fixture(t, "debuglog_a.txt"))
	require.NoError(t, err)
	defer il.Close()

	lines, err := readAll(t, il)
	require.NoError(t, err)
	assert.Equal(t, strings.SplitAfter(testutil.LoadFixture(t, "debuglog_a.txt"), "\n")[:3], lines)
}

func TestInterlace(t *testing.T) {
	il, err := Open(fixture(t, "debuglog_a.txt"), fixture(t, "debuglog_b.txt"))
	require.NoError(t, err)
	defer il.Close()

	lines, err := readAll(t, il)
	require.NoError(t, err)
	require.Len(t, lines, 4)

	var events []string
	for _, l := range lines {
		fields := strings.Fields(l)
		events = append(events, fields[len(fields)-1])
	}
	assert.Equal(t, []string{"start.", "install.", "update_status.", "leader_elected."}, events)
}

func TestInterlaceNoDate(t *testing.T) {
	il, err := Open(fixture(t, "debuglog_nodate.txt"), fixture(t, "debuglog_b.txt"))
	require.NoError(t, err)
	defer il.Close()

	_, err = readAll(t, il)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "juju debug-log --date")
	assert.Contains(t, err.Error(), "debuglog_nodate.txt")
}

func TestInterlaceGarbage(t *testing.T) {
	il := NewInterlacer(
		[]string{"x.log", "y.log"},
		[]io.Reader{strings.NewReader("garbage\n"), strings.NewReader("unit-a-0: 2024-01-10 12:00:01 DEBUG hi\n")},
	)
	_, err := readAll(t, il)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x.log")
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}
