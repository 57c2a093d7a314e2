package tools

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const devNull = "/dev/null"

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// FilePatch is the part of a unified diff that touches one file. An empty
// OldPath means the file is created, an empty NewPath that it is deleted.
type FilePatch struct {
	OldPath string
	NewPath string
	hunks   []hunk
}

func (fp FilePatch) Target() string {
	if fp.NewPath != "" {
		return fp.NewPath
	}
	return fp.OldPath
}

type hunk struct {
	oldStart int
	oldCount int
	lines    []hunkLine
}

type hunkLine struct {
	op   byte // ' ', '+', '-'
	text []byte
}

// ParsePatch splits a unified diff into per-file patches. Paths have their
// a/ and b/ prefixes removed. Carriage returns are kept so CRLF files patch
// byte for byte.
func ParsePatch(patch []byte) ([]FilePatch, error) {
	var (
		files          []FilePatch
		cur            *FilePatch
		open           *hunk
		oldLeft        int
		newLeft        int
		last           *hunkLine
		pendingOldPath string
		havePending    bool
	)

	for _, line := range patchLines(string(patch)) {
		if open != nil && (oldLeft > 0 || newLeft > 0) {
			if strings.HasPrefix(line, `\ `) {
				trimNewline(last)
				continue
			}
			if line == "" {
				// some generators drop the space on empty context lines
				line = " "
			}

			op := line[0]
			switch op {
			case ' ':
				oldLeft--
				newLeft--
			case '-':
				oldLeft--
			case '+':
				newLeft--
			default:
				return nil, fmt.Errorf("invalid diff line prefix %q", op)
			}
			if oldLeft < 0 || newLeft < 0 {
				return nil, errors.New("hunk is longer than its header declares")
			}

			open.lines = append(open.lines, hunkLine{op: op, text: []byte(line[1:] + "\n")})
			last = &open.lines[len(open.lines)-1]
			continue
		}

		switch {
		case strings.HasPrefix(line, `\ `):
			trimNewline(last)

		case strings.HasPrefix(line, "--- "):
			pendingOldPath = headerPath(line[4:])
			havePending = true
			open, last = nil, nil

		case strings.HasPrefix(line, "+++ "):
			if !havePending {
				return nil, errors.New("invalid unified diff: +++ header without ---")
			}
			files = append(files, FilePatch{OldPath: pendingOldPath, NewPath: headerPath(line[4:])})
			cur = &files[len(files)-1]
			havePending = false
			open, last = nil, nil

		case hunkHeaderRe.MatchString(line):
			if cur == nil {
				return nil, errors.New("invalid unified diff: hunk before file header")
			}
			h, err := parseHunkHeader(line)
			if err != nil {
				return nil, err
			}
			cur.hunks = append(cur.hunks, h)
			open = &cur.hunks[len(cur.hunks)-1]
			oldLeft, newLeft = h.oldCount, newCountOf(line)
			last = nil

		default:
			// git extended headers, "diff --git", "index", trailing prose
			open, last = nil, nil
		}
	}

	if open != nil && (oldLeft > 0 || newLeft > 0) {
		return nil, errors.New("invalid unified diff: truncated hunk")
	}
	if len(files) == 0 {
		return nil, errors.New("invalid unified diff: no file headers found")
	}
	return files, nil
}

// Apply runs the hunks against orig. Context lines tolerate trailing
// whitespace and CRLF differences; removed lines must match exactly.
func (fp FilePatch) Apply(orig []byte) ([]byte, error) {
	src := splitKeepNewline(orig)
	var out [][]byte
	pos := 0

	for _, h := range fp.hunks {
		at := h.oldStart - 1
		if h.oldStart == 0 && h.oldCount == 0 {
			at = 0
		}
		switch {
		case at < 0:
			return nil, fmt.Errorf("invalid hunk start %d", h.oldStart)
		case at > len(src):
			return nil, fmt.Errorf("hunk starts past EOF: start=%d len=%d", h.oldStart, len(src))
		case at < pos:
			return nil, fmt.Errorf("overlapping or out-of-order hunks at line %d", h.oldStart)
		}

		out = append(out, src[pos:at]...)
		pos = at

		for _, l := range h.lines {
			switch l.op {
			case '+':
				out = append(out, l.text)
			case ' ':
				if pos >= len(src) || !sameIgnoringTrailingSpace(src[pos], l.text) {
					return nil, fmt.Errorf("patch context mismatch at line %d of %s", pos+1, fp.Target())
				}
				out = append(out, src[pos])
				pos++
			case '-':
				if pos >= len(src) || !sameLine(src[pos], l.text, pos == len(src)-1) {
					return nil, fmt.Errorf("patch deletion mismatch at line %d of %s", pos+1, fp.Target())
				}
				pos++
			}
		}
	}

	out = append(out, src[pos:]...)
	return bytes.Join(out, nil), nil
}

func parseHunkHeader(line string) (hunk, error) {
	m := hunkHeaderRe.FindStringSubmatch(line)
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return hunk{}, fmt.Errorf("invalid hunk header %q: %w", line, err)
	}
	count := 1
	if m[2] != "" {
		if count, err = strconv.Atoi(m[2]); err != nil {
			return hunk{}, fmt.Errorf("invalid hunk header %q: %w", line, err)
		}
	}
	return hunk{oldStart: start, oldCount: count}, nil
}

func newCountOf(line string) int {
	m := hunkHeaderRe.FindStringSubmatch(line)
	if m[4] == "" {
		return 1
	}
	n, _ := strconv.Atoi(m[4])
	return n
}

func headerPath(s string) string {
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == devNull {
		return ""
	}
	if strings.HasPrefix(s, "a/") || strings.HasPrefix(s, "b/") {
		return s[2:]
	}
	return s
}

// patchTargets lists every path named by a ---/+++ header pair without
// validating the hunks, so patches git can apply are not rejected early.
func patchTargets(patch string) []string {
	lines := patchLines(patch)
	seen := map[string]bool{}
	var out []string

	for i := 0; i+1 < len(lines); i++ {
		if !strings.HasPrefix(lines[i], "--- ") || !strings.HasPrefix(lines[i+1], "+++ ") {
			continue
		}
		for _, header := range lines[i : i+2] {
			p := headerPath(header[4:])
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
		i++
	}
	return out
}

func patchLines(patch string) []string {
	lines := strings.Split(patch, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func trimNewline(l *hunkLine) {
	if l != nil && len(l.text) > 0 && l.text[len(l.text)-1] == '\n' {
		l.text = l.text[:len(l.text)-1]
	}
}

func splitKeepNewline(b []byte) [][]byte {
	var lines [][]byte
	for len(b) > 0 {
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			lines = append(lines, b)
			break
		}
		lines = append(lines, b[:i+1])
		b = b[i+1:]
	}
	return lines
}

func sameLine(orig, diff []byte, lastLine bool) bool {
	if bytes.Equal(orig, diff) {
		return true
	}
	// a final line without newline may be removed by a diff line that has one
	return lastLine && !bytes.HasSuffix(orig, []byte("\n")) && bytes.Equal(append(orig[:len(orig):len(orig)], '\n'), diff)
}

func sameIgnoringTrailingSpace(orig, diff []byte) bool {
	return bytes.Equal(orig, diff) ||
		bytes.Equal(bytes.TrimRight(orig, " \t\r\n"), bytes.TrimRight(diff, " \t\r\n"))
}
