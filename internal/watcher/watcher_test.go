package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)
}

func TestFilters(t *testing.T) {
	assert.True(t, NoBackupFilter("hyph-en.tex"))
	assert.False(t, NoBackupFilter("hyph-en.tex~"))
	assert.False(t, NoBackupFilter(".hyph-en.tex.swp"))
	assert.False(t, NoBackupFilter(".#hyph-en.tex"))

	dir := t.TempDir()
	only := PathsFilter(filepath.Join(dir, "en.tex"))
	assert.True(t, only(filepath.Join(dir, "en.tex")))
	assert.True(t, only(filepath.Join(dir, ".", "en.tex")))
	assert.False(t, only(filepath.Join(dir, "de.tex")))
}

func TestFileWatcherAddFiles(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	dir := t.TempDir()
	assert.NoError(t, watcher.AddFiles(filepath.Join(dir, "en.tex"), filepath.Join(dir, "de.tex")))
	assert.Error(t, watcher.AddFiles("/non/existent/dir/en.tex"))
	assert.Error(t, watcher.AddFiles(""))
}

func TestDebouncerKeepsLastEventPerPath(t *testing.T) {
	d := &Debouncer{
		delay:  time.Hour,
		output: make(chan []ChangeEvent, 1),
	}
	d.addEvent(ChangeEvent{Type: EventTypeCreated, Path: "a.tex"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "b.tex"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "a.tex"})
	d.timer.Stop()
	d.flush()

	events := <-d.output
	require.Len(t, events, 2)
	assert.Equal(t, ChangeEvent{Type: EventTypeModified, Path: "a.tex"}, events[0])
	assert.Equal(t, "b.tex", events[1].Path)
	assert.Empty(t, d.pending)
}

type fakeReloader struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeReloader) Reload(_ context.Context, path string) ([]language.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	if err := f.fail[path]; err != nil {
		return nil, err
	}
	return []language.Tag{language.AmericanEnglish}, nil
}

func (f *fakeReloader) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestReloadHandler(t *testing.T) {
	dir := t.TempDir()
	en := filepath.Join(dir, "en.tex")
	de := filepath.Join(dir, "de.tex")

	r := &fakeReloader{fail: map[string]error{de: fmt.Errorf("broken")}}
	var notified []string
	handler := ReloadHandler(context.Background(), r, []string{en, de}, nil,
		func(path string, tags []language.Tag) { notified = append(notified, path) })

	err := handler([]ChangeEvent{
		{Type: EventTypeModified, Path: en},
		{Type: EventTypeDeleted, Path: en},
		{Type: EventTypeCreated, Path: filepath.Join(dir, "other.tex")},
		{Type: EventTypeModified, Path: de},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, []string{en, de}, r.Calls())
	assert.Equal(t, []string{en}, notified)
}

func TestWatchSourcesReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en.pat")
	require.NoError(t, os.WriteFile(path, []byte("a1b\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &fakeReloader{}
	fw, err := WatchSources(ctx, r, []string{path}, 20*time.Millisecond, nil, nil)
	require.NoError(t, err)
	defer fw.Stop()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.pat"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("a1b\nb1c\n"), 0644))

	require.Eventually(t, func() bool {
		calls := r.Calls()
		return len(calls) > 0 && calls[0] == path
	}, 2*time.Second, 20*time.Millisecond)

	for _, call := range r.Calls() {
		assert.Equal(t, path, call)
	}
}
