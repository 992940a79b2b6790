package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherScan(t *testing.T) {
	root := writeFiles(t, map[string]string{"a.list": "[]", "b.list": "[]"})
	p, err := New(root, Config{Include: []string{"*.list"}})
	require.NoError(t, err)
	w := p.Watch(time.Hour)

	changed, removed, err := w.Scan()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{filepath.Join(root, "a.list"), filepath.Join(root, "b.list")}, changed)
	require.Empty(t, removed)

	changed, removed, err = w.Scan()
	require.NoError(t, err)
	require.Empty(t, changed)
	require.Empty(t, removed)

	a := filepath.Join(root, "a.list")
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(a, later, later))
	require.NoError(t, os.Remove(filepath.Join(root, "b.list")))
	c := filepath.Join(root, "c.list")
	require.NoError(t, os.WriteFile(c, []byte("[]"), 0o644))

	changed, removed, err = w.Scan()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{a, c}, changed)
	require.Equal(t, []string{filepath.Join(root, "b.list")}, removed)
}

func TestWatcherRun(t *testing.T) {
	root := writeFiles(t, map[string]string{"a.list": "[]"})
	a := filepath.Join(root, "a.list")
	w := NewWatcher(func() ([]string, error) { return []string{a}, nil }, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		time.Sleep(50 * time.Millisecond)
		later := time.Now().Add(time.Minute)
		_ = os.Chtimes(a, later, later)
	}()

	var got []string
	err := w.Run(ctx, func(changed, removed []string) {
		got = changed
		cancel()
	})
	require.NoError(t, err)
	require.Equal(t, []string{a}, got)
}
