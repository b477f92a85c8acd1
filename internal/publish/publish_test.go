package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskdeck/internal/model"
)

func TestRenderTaskMarkdown(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 12, 20, 9, 30, 0, 0, time.UTC)
	md := RenderTaskMarkdown(model.Task{
		ID:          "t1",
		Title:       "Hello",
		Description: "Some **markdown**.",
		CreatedAt:   now,
	})
	for _, want := range []string{"# Hello", "- ID: t1", "- Created: 2025-12-20T09:30:00Z", "## Description", "Some **markdown**."} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Updated:") {
		t.Fatalf("zero UpdatedAt should be omitted:\n%s", md)
	}
}

func TestRenderIndexMarkdown(t *testing.T) {
	t.Parallel()

	md := RenderIndexMarkdown("alice", []model.Task{{ID: "b/2", Title: "Second"}, {ID: "a1", Title: " "}})
	if !strings.HasPrefix(md, "# Tasks for alice\n") {
		t.Fatalf("unexpected heading:\n%s", md)
	}
	if !strings.Contains(md, "- [Second](tasks/b_2.md)") || !strings.Contains(md, "- [(untitled)](tasks/a1.md)") {
		t.Fatalf("unexpected links:\n%s", md)
	}
	if got := RenderIndexMarkdown("", nil); !strings.Contains(got, "No tasks.") {
		t.Fatalf("expected empty marker, got:\n%s", got)
	}
}

func TestWriteTasks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tasks := []model.Task{{ID: "t1", Title: "One", Description: "first"}, {ID: "t2", Title: "Two", Description: "second"}}

	res, err := WriteTasks(tasks, dir, WriteOptions{Owner: "alice"})
	if err != nil {
		t.Fatalf("WriteTasks: %v", err)
	}
	if len(res.Written) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Written)
	}
	b, err := os.ReadFile(filepath.Join(dir, "tasks", "t2.md"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "second") {
		t.Fatalf("unexpected task page:\n%s", b)
	}

	if _, err := WriteTasks(tasks, dir, WriteOptions{}); err == nil || !strings.Contains(err.Error(), "--overwrite") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
	if _, err := WriteTasks(tasks, dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestWriteTasks_CollidingIDs(t *testing.T) {
	t.Parallel()

	_, err := WriteTasks([]model.Task{{ID: "a/b"}, {ID: "a_b"}}, t.TempDir(), WriteOptions{})
	if err == nil || !strings.Contains(err.Error(), "same file") {
		t.Fatalf("expected collision error, got %v", err)
	}
}
