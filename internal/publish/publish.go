package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"taskdeck/internal/model"
)

type WriteOptions struct {
	Overwrite bool
	// Owner names the signed-in user in the index heading.
	Owner string
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteTasks writes <toDir>/index.md plus one <toDir>/tasks/<id>.md per task.
// It stops at the first error; files written before it are kept.
func WriteTasks(tasks []model.Task, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	tasksDir := filepath.Join(toDir, "tasks")
	if err := os.MkdirAll(tasksDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderIndexMarkdown(opt.Owner, tasks)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	written := []string{indexPath}
	seen := map[string]bool{}
	for _, t := range tasks {
		stem := FileStem(t.ID)
		if seen[stem] {
			return WriteResult{Written: written}, errors.New("two tasks map to the same file: " + stem + ".md")
		}
		seen[stem] = true

		p := filepath.Join(tasksDir, stem+".md")
		if err := writeFile(p, []byte(RenderTaskMarkdown(t)), opt.Overwrite); err != nil {
			return WriteResult{Written: written}, err
		}
		written = append(written, p)
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
