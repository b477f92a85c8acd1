package main

import (
	"fmt"
	"os"
	"strings"

	"taskdeck/internal/cli"
)

func isPagePath(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "/")
}

// rewritePageArgs turns `taskdeck [flags] /signup` into `taskdeck [flags] --path /signup`.
// Cobra would otherwise treat the path as an unknown subcommand, so argv is rewritten
// before parsing. Persistent flags may come first, so the first positional is located.
func rewritePageArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--config":    true,
		"--api-url":   true,
		"--dir":       true,
		"--log-level": true,
		"--format":    true,
		"--path":      true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "--path")
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isPagePath(argv[i+1]) {
				out := make([]string, 0, len(argv))
				out = append(out, argv[:i]...)
				out = append(out, "--path", argv[i+1])
				out = append(out, argv[i+2:]...)
				return out
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}

		if isPagePath(a) {
			return rewrite(i)
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewritePageArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
