package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"remindbot/reminder"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := New(zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	return w
}

// waitForEvent reads events for path until one carries want reminders.
// File creation may produce several events (CREATE + WRITE), and an early one
// can see a partially written file.
func waitForEvent(t *testing.T, w *Watcher, path string, want int) FileEvent {
	t.Helper()
	timeout := time.After(3 * time.Second)
	var last FileEvent
	for {
		select {
		case event := <-w.Events:
			if event.Err != nil {
				t.Fatalf("Watcher error: %v", event.Err)
			}
			if event.FilePath != path {
				t.Errorf("Got event for unexpected file %s", event.FilePath)
				continue
			}
			last = event
			if len(event.Reminders) == want {
				return event
			}
		case <-timeout:
			t.Fatalf("Timeout waiting for %d reminders from %s, last event had %d", want, path, len(last.Reminders))
		}
	}
}

func TestWatcherFileUpdates(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected int
		skipped  int
	}{
		{
			name: "single reminder",
			content: `# Test
This has [remind_me 1 h Test reminder] in it.`,
			expected: 1,
		},
		{
			name: "multiple reminders same line",
			content: `# Test
Multiple [remind_me 1 h First] and [remind_me 2 h Second] reminders.`,
			expected: 2,
		},
		{
			name: "mixed formats",
			content: `# Test
Relative: [remind_me 30 min Relative time]
Natural: [remind_me tomorrow 9:00 Natural language]
Part of day: [remind_me tomorrow evening Dinner]`,
			expected: 3,
		},
		{
			name: "skipped directives are reported",
			content: `# Test
Spaces: [remind_me    1 h   Lots of spaces   ]
Broken: [remind_me sometime Call mom] normal text [remind_me 2 h Another]

[remind_me 5 min After empty line]`,
			expected: 3,
			skipped:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()

			w := newTestWatcher(t)
			defer w.Stop()
			w.Start()

			if err := w.WatchDirectory(tempDir); err != nil {
				t.Fatalf("Failed to watch directory: %v", err)
			}

			testFile := filepath.Join(tempDir, "test.md")
			if err := os.WriteFile(testFile, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write test file: %v", err)
			}

			event := waitForEvent(t, w, testFile, tt.expected)
			if len(event.Skipped) != tt.skipped {
				t.Errorf("Expected %d skipped, got %d: %v", tt.skipped, len(event.Skipped), event.Skipped)
			}
		})
	}
}

func TestWatcherNewSubdirectory(t *testing.T) {
	tempDir := t.TempDir()

	w := newTestWatcher(t)
	defer w.Stop()
	w.Start()

	if err := w.WatchDirectory(tempDir); err != nil {
		t.Fatalf("Failed to watch directory: %v", err)
	}

	subDir := filepath.Join(tempDir, "sub")
	if err := os.Mkdir(subDir, 0755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}
	// Give the watcher time to pick up the new directory
	time.Sleep(200 * time.Millisecond)

	newFile := filepath.Join(subDir, "new_file.md")
	content := `# New File
This is a [remind_me 1 h New file reminder] in a new directory.`
	if err := os.WriteFile(newFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create new file: %v", err)
	}

	waitForEvent(t, w, newFile, 1)
}

func TestWatcherIgnoresNonMarkdownFiles(t *testing.T) {
	tempDir := t.TempDir()

	w := newTestWatcher(t)
	defer w.Stop()
	w.Start()

	if err := w.WatchDirectory(tempDir); err != nil {
		t.Fatalf("Failed to watch directory: %v", err)
	}

	txtFile := filepath.Join(tempDir, "test.txt")
	if err := os.WriteFile(txtFile, []byte("This has [remind_me 1 h Should be ignored] but it's not markdown."), 0644); err != nil {
		t.Fatalf("Failed to write txt file: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	mdFile := filepath.Join(tempDir, "test.md")
	if err := os.WriteFile(mdFile, []byte("This has [remind_me 1 h Should be detected] and it's markdown."), 0644); err != nil {
		t.Fatalf("Failed to write md file: %v", err)
	}

	waitForEvent(t, w, mdFile, 1)
}

func TestWatchSingleFileMultipleUpdates(t *testing.T) {
	tempPath := filepath.Join(t.TempDir(), "watch_multi.md")
	if err := os.WriteFile(tempPath, nil, 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	w := newTestWatcher(t)
	defer w.Stop()

	if err := w.Watch(tempPath); err != nil {
		t.Fatalf("Failed to watch file: %v", err)
	}
	w.Start()

	updates := []struct {
		content  string
		expected int
	}{
		{"[remind_me 1 h One]", 1},
		{"[remind_me 1 h One]\n[remind_me 2 h Two]", 2},
		{"[remind_me 1 h One]\n[remind_me 2 h Two]\n[remind_me 3 h Three]", 3},
	}

	for i, update := range updates {
		if err := os.WriteFile(tempPath, []byte(update.content), 0644); err != nil {
			t.Fatalf("Update %d: Failed to write file: %v", i, err)
		}
		waitForEvent(t, w, tempPath, update.expected)
	}
}

func TestStopTwice(t *testing.T) {
	w := newTestWatcher(t)
	w.Start()
	w.Stop()
	w.Stop()
}

func TestParseInitialDirectory(t *testing.T) {
	tempDir := t.TempDir()

	files := map[string]string{
		"file1.md": `# File 1
First [remind_me 1 h File 1 reminder] here.`,
		"file2.md": `# File 2
Second [remind_me 2 h File 2 reminder] there.
Another [remind_me 3 h Another file 2 reminder] one.
Broken [remind_me 1 day 1 day twice] too.`,
		"file3.txt": `This is not markdown and should be ignored.`,
		"subdir/file4.md": `# File 4
Nested [remind_me 4 h Nested reminder] file.`,
	}

	for filename, content := range files {
		fullPath := filepath.Join(tempDir, filename)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write file %s: %v", filename, err)
		}
	}

	events, isDir, err := ParseInitial(tempDir)
	if err != nil {
		t.Fatalf("Failed to parse initial directory: %v", err)
	}
	if !isDir {
		t.Error("Expected isDir to be true")
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 file events, got %d", len(events))
	}

	counts := make(map[string]int)
	skipped := 0
	for _, event := range events {
		if event.Err != nil {
			t.Errorf("Unexpected error for %s: %v", event.FilePath, event.Err)
		}
		for _, r := range event.Reminders {
			if r.Source != event.FilePath {
				t.Errorf("Reminder source %s does not match event file %s", r.Source, event.FilePath)
			}
		}
		counts[filepath.Base(event.FilePath)] = len(event.Reminders)
		skipped += len(event.Skipped)
	}

	expected := map[string]int{"file1.md": 1, "file2.md": 2, "file4.md": 1}
	for file, want := range expected {
		if counts[file] != want {
			t.Errorf("Expected %d reminders from %s, got %d", want, file, counts[file])
		}
	}
	if skipped != 1 {
		t.Errorf("Expected 1 skipped directive, got %d", skipped)
	}
}

func TestParseInitialSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "single.md")
	content := `# Single File Test
This has [remind_me 1 h Single file reminder] in it.
And [remind_me 2 h Another single file reminder] too.`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	events, isDir, err := ParseInitial(path)
	if err != nil {
		t.Fatalf("Failed to parse single file: %v", err)
	}
	if isDir {
		t.Error("Expected isDir to be false for single file")
	}
	if len(events) != 1 || len(events[0].Reminders) != 2 {
		t.Fatalf("Expected one event with 2 reminders, got %+v", events)
	}

	for _, r := range events[0].Reminders {
		if r.Source != path {
			t.Errorf("Expected source file %s, got %s", path, r.Source)
		}
		if r.Status != reminder.Pending {
			t.Errorf("Expected status Pending, got %v", r.Status)
		}
	}
}

func TestParseInitialMissing(t *testing.T) {
	if _, _, err := ParseInitial(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("Expected error for missing path")
	}
}
