package runledger

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerMonotonicSeq(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, "run-1").WithClock(func() time.Time { return time.Unix(0, 0) })

	require.NoError(t, l.Start(map[string]any{}))
	require.NoError(t, l.Event("tool.result", map[string]any{"ok": true}))
	require.NoError(t, l.End(map[string]any{"ok": true}))

	assert.Equal(t, uint64(3), l.Seq())

	f, err := os.Open(filepath.Join(dir, "run-1.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	assert.Equal(t, 3, lines)
}

func TestNewRunIDUnique(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	assert.NotEqual(t, a, b)
}

func TestRunDirDefault(t *testing.T) {
	os.Unsetenv("ADAMOS_RUN_DIR")
	assert.Equal(t, DefaultRunDir, RunDir())
}

func TestRunDirOverride(t *testing.T) {
	t.Setenv("ADAMOS_RUN_DIR", "/tmp/custom-runs")
	assert.Equal(t, "/tmp/custom-runs", RunDir())
}
