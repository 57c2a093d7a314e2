package tools

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kardolus/chatgpt-agent/agent/types"
)

const (
	NoMatches = "No matches found"

	ripgrep        = "rg"
	binarySniffLen = 8000
)

// SearchFiles greps under path for pattern. ripgrep is used when it is on
// PATH; otherwise the tree is scanned in-process with the same
// "path:line:text" output, skipping hidden entries and binary files.
func (e *Executor) SearchFiles(ctx context.Context, tc types.ToolContext, a types.SearchFiles) (string, error) {
	if a.Pattern == "" {
		return "", errors.New("search_files requires a pattern")
	}

	target := a.Path
	if strings.TrimSpace(target) == "" {
		target = "."
	}

	base, err := Resolve(tc.Root, target, tc.AllowOutsideRoot)
	if err != nil {
		return "", err
	}

	if e.available(ripgrep) {
		root, err := Resolve(tc.Root, ".", true)
		if err != nil {
			return "", err
		}
		return e.searchWithRipgrep(ctx, root, base, a)
	}
	return e.searchFallback(ctx, base, a)
}

// searchWithRipgrep runs rg from the workspace root against the resolved
// target and rewrites its paths to match the fallback: relative to the
// target directory, or the bare name when the target is a file.
func (e *Executor) searchWithRipgrep(ctx context.Context, root, base string, a types.SearchFiles) (string, error) {
	info, err := e.fs.Stat(base)
	if err != nil {
		return "", err
	}
	prefix := base
	if !info.IsDir() {
		prefix = filepath.Dir(base)
	}
	sep := string(filepath.Separator)
	prefix = strings.TrimSuffix(prefix, sep) + sep

	args := []string{"--line-number", "--no-heading", "--with-filename", "--color", "never"}
	if _, err := regexp.Compile(a.Pattern); err != nil {
		args = append(args, "--fixed-strings")
	}
	if a.Glob != "" {
		args = append(args, "--glob", a.Glob)
	}
	args = append(args, "--", a.Pattern, base)

	res, err := e.shell.Run(ctx, root, ripgrep, args...)
	if err != nil {
		return "", fmt.Errorf("run %s: %w", ripgrep, err)
	}

	switch res.ExitCode {
	case 0:
	case 1:
		return NoMatches, nil
	default:
		if msg := strings.TrimSpace(res.Stderr); msg != "" {
			return "", errors.New(msg)
		}
		return "", fmt.Errorf("command exited with code %d", res.ExitCode)
	}

	var matches []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		matches = append(matches, strings.TrimPrefix(line, prefix))
	}
	return e.formatMatches(matches), nil
}

func (e *Executor) searchFallback(ctx context.Context, base string, a types.SearchFiles) (string, error) {
	re, err := regexp.Compile(a.Pattern)
	if err != nil {
		re = regexp.MustCompile(regexp.QuoteMeta(a.Pattern))
	}

	if a.Glob != "" && !doublestar.ValidatePattern(a.Glob) {
		return "", fmt.Errorf("search_files: invalid glob %q", a.Glob)
	}

	var matches []string
	limit := e.maxSearchResults + 1

	err = e.fs.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == base {
				return err
			}
			return nil
		}
		if p != base && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(base, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			rel = d.Name()
		}

		if a.Glob != "" && !matchGlob(a.Glob, rel) {
			return nil
		}

		data, err := e.fs.ReadFile(p)
		if err != nil || isBinary(data) {
			return nil
		}

		matches = scanMatches(matches, re, rel, data, limit)
		if len(matches) >= limit {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if len(matches) == 0 {
		return NoMatches, nil
	}
	return e.formatMatches(matches), nil
}

func (e *Executor) formatMatches(matches []string) string {
	if len(matches) == 0 {
		return NoMatches
	}
	if len(matches) > e.maxSearchResults {
		matches = append(matches[:e.maxSearchResults:e.maxSearchResults],
			fmt.Sprintf("... (results truncated at %d matches)", e.maxSearchResults))
	}
	return strings.Join(matches, "\n")
}

func scanMatches(matches []string, re *regexp.Regexp, rel string, data []byte, limit int) []string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)

	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if !re.MatchString(text) {
			continue
		}
		matches = append(matches, fmt.Sprintf("%s:%d:%s", rel, line, text))
		if len(matches) >= limit {
			break
		}
	}
	return matches
}

// matchGlob applies glob to the slash-separated path. A glob without a
// slash also matches the base name, as ripgrep does.
func matchGlob(glob, rel string) bool {
	if ok, _ := doublestar.Match(glob, rel); ok {
		return true
	}
	if strings.Contains(glob, "/") {
		return false
	}
	ok, _ := doublestar.Match(glob, path.Base(rel))
	return ok
}

func isBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}
