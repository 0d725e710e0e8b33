package docread

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkmathur/partsrecon/constants"
)

func TestReadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimate.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two\n"), 0o644))

	r := NewReader(Config{}, nil)
	doc, err := r.Read(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, constants.TXT, doc.Format)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, []string{"line one", "line two"}, doc.Pages[0].Lines)
	assert.Empty(t, doc.Pages[0].Words)
}

func TestReadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimate.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))

	r := NewReader(Config{}, nil)
	_, err := r.Read(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestReadMissingFile(t *testing.T) {
	r := NewReader(Config{}, nil)
	_, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestReadCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimate.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewReader(Config{}, nil)
	_, err := r.Read(ctx, path)
	require.Error(t, err)
}
