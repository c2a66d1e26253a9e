package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func collect(t *testing.T, c *Connector, root string) []domain.FileInfo {
	t.Helper()
	var files []domain.FileInfo
	err := c.Walk(context.Background(), root, func(f domain.FileInfo) error {
		files = append(files, f)
		return nil
	})
	require.NoError(t, err)
	sort.Slice(files, func(i, j int) bool { return files[i].Source < files[j].Source })
	return files
}

func TestConnector_Walk(t *testing.T) {
	t.Run("recursive with tenant directories", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "alice", "2024"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "faq.md"), []byte("faq"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "alice", "a.txt"), []byte("a"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "alice", "2024", "q1.csv"), []byte("q1,1"), 0644))

		files := collect(t, New(), root)

		require.Len(t, files, 3)
		assert.Equal(t, "alice/2024/q1.csv", files[0].Source)
		assert.Equal(t, "q1.csv", files[0].Name)
		assert.Equal(t, "alice/a.txt", files[1].Source)
		assert.Equal(t, filepath.Join(root, "alice", "a.txt"), files[1].Path)
		assert.Equal(t, int64(1), files[1].Size)
		assert.False(t, files[1].ModTime.IsZero())
		assert.Equal(t, "faq.md", files[2].Source)
	})

	t.Run("empty directory", func(t *testing.T) {
		assert.Empty(t, collect(t, New(), t.TempDir()))
	})

	t.Run("creates missing root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "data", "user-uploads")

		files := collect(t, New(), root)

		assert.Empty(t, files)
		info, err := os.Stat(root)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("root is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

		err := New().Walk(context.Background(), path, func(domain.FileInfo) error { return nil })

		require.Error(t, err)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("skips symlinks and directories", func(t *testing.T) {
		root := t.TempDir()
		target := filepath.Join(root, "real.txt")
		require.NoError(t, os.WriteFile(target, []byte("x"), 0644))
		if err := os.Symlink(target, filepath.Join(root, "link.txt")); err != nil {
			t.Skip("symlinks not supported")
		}

		files := collect(t, New(), root)

		require.Len(t, files, 1)
		assert.Equal(t, "real.txt", files[0].Source)
	})

	t.Run("callback error stops walk", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("b"), 0644))

		calls := 0
		err := New().Walk(context.Background(), root, func(domain.FileInfo) error {
			calls++
			return domain.ErrInvalidInput
		})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := New().Walk(ctx, root, func(domain.FileInfo) error { return nil })

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestConnector_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0644))

	data, err := New().ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	_, err = New().ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestIsHidden tests the isHidden function with various path scenarios.
func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"/root/.config/file.txt", true},
		{"dir/.git/config", true},
		{".config/.cache/data", true},

		{"file.txt", false},
		{"path/to/file.txt", false},
		{"file.hidden", false},
		{"directory.name/file", false},

		// . and .. are not considered hidden
		{".", false},
		{"..", false},
		{"path/./file", false},
		{"path/../file", false},

		{"", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}
