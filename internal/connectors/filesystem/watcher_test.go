package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct {
	count atomic.Int32
}

func (n *countingNotifier) Trigger() {
	n.count.Add(1)
}

func textOnly(name string) bool {
	return strings.HasSuffix(name, ".txt")
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   bool
		dir       bool
		operation fsnotify.Op
		want      bool
	}{
		{name: "create supported file", file: "a.txt", content: true, operation: fsnotify.Create, want: true},
		{name: "write supported file", file: "a.txt", content: true, operation: fsnotify.Write, want: true},
		{name: "write with chmod", file: "a.txt", content: true, operation: fsnotify.Write | fsnotify.Chmod, want: true},
		{name: "chmod only", file: "a.txt", content: true, operation: fsnotify.Chmod, want: false},
		{name: "remove", file: "gone.txt", operation: fsnotify.Remove, want: false},
		{name: "rename", file: "gone.txt", operation: fsnotify.Rename, want: false},
		{name: "unsupported extension", file: "image.png", content: true, operation: fsnotify.Create, want: false},
		{name: "hidden file", file: ".draft.txt", content: true, operation: fsnotify.Create, want: false},
		{name: "new directory", file: "bob", dir: true, operation: fsnotify.Create, want: true},
		{name: "directory write", file: "bob", dir: true, operation: fsnotify.Write, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			path := filepath.Join(root, tt.file)
			switch {
			case tt.dir:
				require.NoError(t, os.Mkdir(path, 0755))
			case tt.content:
				require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
			}

			w, err := NewWatcher(root, &countingNotifier{}, textOnly)
			require.NoError(t, err)
			defer w.Close()

			got := w.handleFsEvent(fsnotify.Event{Name: path, Op: tt.operation})

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWatcher_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")

	w, err := NewWatcher(root, &countingNotifier{}, nil)
	require.NoError(t, err)
	defer w.Close()

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWatcher_Run(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "alice"), 0755))

	notifier := &countingNotifier{}
	w, err := NewWatcher(root, notifier, textOnly, WithQuietPeriod(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "alice", "notes.txt"), []byte("hello"), 0644))

	assert.Eventually(t, func() bool {
		return notifier.count.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}

func TestWatcher_Run_NewSubdirectory(t *testing.T) {
	root := t.TempDir()
	notifier := &countingNotifier{}
	w, err := NewWatcher(root, notifier, textOnly, WithQuietPeriod(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	bob := filepath.Join(root, "bob")
	require.NoError(t, os.Mkdir(bob, 0755))
	assert.Eventually(t, func() bool {
		return notifier.count.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)

	before := notifier.count.Load()
	// Give the watcher time to add the new directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(bob, "b.txt"), []byte("hi"), 0644))

	assert.Eventually(t, func() bool {
		return notifier.count.Load() > before
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWithQuietPeriod(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name string
		d    time.Duration
		want time.Duration
	}{
		{name: "default", d: 0, want: DefaultQuietPeriod},
		{name: "negative keeps default", d: -time.Second, want: DefaultQuietPeriod},
		{name: "custom", d: 2 * time.Second, want: 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWatcher(root, &countingNotifier{}, nil, WithQuietPeriod(tt.d))
			require.NoError(t, err)
			defer w.Close()

			assert.Equal(t, tt.want, w.quiet)
		})
	}
}

func TestWatcher_Run_CoalescesMultiStepWrite(t *testing.T) {
	const quiet = 200 * time.Millisecond
	root := t.TempDir()
	notifier := &countingNotifier{}
	w, err := NewWatcher(root, notifier, textOnly, WithQuietPeriod(quiet))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	path := filepath.Join(root, "upload.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = f.WriteString("first half ")
	require.NoError(t, err)
	time.Sleep(quiet / 4)
	_, err = f.WriteString("second half")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Never(t, func() bool {
		return notifier.count.Load() > 0
	}, quiet/2, 10*time.Millisecond, "triggered before the upload settled")

	assert.Eventually(t, func() bool {
		return notifier.count.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(2 * quiet)
	assert.Equal(t, int32(1), notifier.count.Load())
}

func TestWatcher_Run_SeparateBurstsTriggerSeparately(t *testing.T) {
	const quiet = 50 * time.Millisecond
	root := t.TempDir()
	notifier := &countingNotifier{}
	w, err := NewWatcher(root, notifier, textOnly, WithQuietPeriod(quiet))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("one"), 0644))
	assert.Eventually(t, func() bool {
		return notifier.count.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("two"), 0644))
	assert.Eventually(t, func() bool {
		return notifier.count.Load() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_Run_IgnoredEventsDoNotTrigger(t *testing.T) {
	const quiet = 20 * time.Millisecond
	root := t.TempDir()
	notifier := &countingNotifier{}
	w, err := NewWatcher(root, notifier, textOnly, WithQuietPeriod(quiet))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "photo.png"), []byte("png"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".partial.txt"), []byte("tmp"), 0644))

	assert.Never(t, func() bool {
		return notifier.count.Load() > 0
	}, 10*quiet, 10*time.Millisecond)
}
