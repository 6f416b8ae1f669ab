package repotools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFilesSortedAndSkipsDotfiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".adam_os"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".adam_os", "x.jsonl"), []byte("x"), 0o644))

	files, err := ListFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, files)
}

func TestReadTextRejectsEscape(t *testing.T) {
	root := t.TempDir()
	_, err := ReadText(root, "../etc/passwd")
	require.Error(t, err)
}

func TestReadTextReadsFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))

	text, err := ReadText(root, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}
