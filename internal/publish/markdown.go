// Package publish renders tasks as markdown files for reading outside the client.
package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/model"
)

// RenderTaskMarkdown renders one task as a standalone page.
func RenderTaskMarkdown(t model.Task) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + titleOf(t))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + t.ID)
	if ts := formatTime(t.CreatedAt); ts != "" {
		writeLn("- Created: " + ts)
	}
	if ts := formatTime(t.UpdatedAt); ts != "" {
		writeLn("- Updated: " + ts)
	}

	if desc := strings.TrimSpace(t.Description); desc != "" {
		writeLn("")
		writeLn("## Description")
		writeLn("")
		writeLn(desc)
	}
	return buf.String()
}

// RenderIndexMarkdown lists tasks in the given order, linking each to its page.
func RenderIndexMarkdown(owner string, tasks []model.Task) string {
	var buf bytes.Buffer
	title := "Tasks"
	if s := strings.TrimSpace(owner); s != "" {
		title = "Tasks for " + s
	}
	buf.WriteString("# " + title + "\n\n")
	if len(tasks) == 0 {
		buf.WriteString("No tasks.\n")
		return buf.String()
	}
	for _, t := range tasks {
		fmt.Fprintf(&buf, "- [%s](tasks/%s.md)\n", titleOf(t), FileStem(t.ID))
	}
	return buf.String()
}

func titleOf(t model.Task) string {
	if s := strings.TrimSpace(t.Title); s != "" {
		return s
	}
	return "(untitled)"
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

// FileStem makes a task id safe to use as a file name. Ids are server-assigned,
// so anything outside [A-Za-z0-9_-] becomes '_'.
func FileStem(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
