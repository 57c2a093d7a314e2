package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ActionType string

const (
	ActionReadFile      ActionType = "read_file"
	ActionWriteFile     ActionType = "write_file"
	ActionAppendFile    ActionType = "append_file"
	ActionCreateFile    ActionType = "create_file"
	ActionDeleteFile    ActionType = "delete_file"
	ActionReplaceInFile ActionType = "replace_in_file"
	ActionListDir       ActionType = "list_dir"
	ActionFileInfo      ActionType = "file_info"
	ActionSearchFiles   ActionType = "search_files"
	ActionApplyPatch    ActionType = "apply_patch"
	ActionMoveFile      ActionType = "move_file"
	ActionRenameFile    ActionType = "rename_file"
	ActionShellCommand  ActionType = "shell_command"
	ActionGit           ActionType = "git"
)

// AllActionTypes lists every action kind in prompt order. Dispatchers and the
// plan schema are tested against this list, so a new kind must be added here.
func AllActionTypes() []ActionType {
	return []ActionType{
		ActionReadFile,
		ActionWriteFile,
		ActionAppendFile,
		ActionCreateFile,
		ActionDeleteFile,
		ActionReplaceInFile,
		ActionListDir,
		ActionFileInfo,
		ActionSearchFiles,
		ActionApplyPatch,
		ActionMoveFile,
		ActionRenameFile,
		ActionShellCommand,
		ActionGit,
	}
}

// Action is one operation requested by a plan. The set of implementations is
// closed: only the structs in this file satisfy it.
type Action interface {
	Type() ActionType
	Describe() string
	Why() string
	action()
}

// Note carries the optional free-text reason shared by every action. It is
// only ever displayed.
type Note struct {
	Reason string `json:"reason,omitempty"`
}

func (n Note) Why() string { return strings.TrimSpace(n.Reason) }

func (Note) action() {}

type ReadFile struct {
	Note
	Path  string `json:"path"`
	Start *int   `json:"start,omitempty"`
	End   *int   `json:"end,omitempty"`
}

type WriteFile struct {
	Note
	Path    string `json:"path"`
	Content string `json:"content"`
}

type AppendFile struct {
	Note
	Path    string `json:"path"`
	Content string `json:"content"`
}

type CreateFile struct {
	Note
	Path      string `json:"path"`
	Content   string `json:"content,omitempty"`
	Overwrite bool   `json:"overwrite,omitempty"`
}

type DeleteFile struct {
	Note
	Path      string `json:"path"`
	Recursive bool   `json:"recursive,omitempty"`
}

type ReplaceInFile struct {
	Note
	Path       string `json:"path"`
	Search     string `json:"search"`
	Replace    string `json:"replace"`
	ReplaceAll bool   `json:"replace_all,omitempty"`
}

type ListDir struct {
	Note
	Path          string `json:"path,omitempty"`
	Recursive     bool   `json:"recursive,omitempty"`
	IncludeHidden bool   `json:"include_hidden,omitempty"`
}

type FileInfo struct {
	Note
	Path string `json:"path"`
}

type SearchFiles struct {
	Note
	Pattern string `json:"pattern"`
	Path    string `json:"path,omitempty"`
	Glob    string `json:"glob,omitempty"`
}

type ApplyPatch struct {
	Note
	Patch string `json:"patch"`
}

type MoveFile struct {
	Note
	From string `json:"from"`
	To   string `json:"to"`
}

type RenameFile struct {
	Note
	Path    string `json:"path"`
	NewName string `json:"new_name"`
}

type ShellCommand struct {
	Note
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

type Git struct {
	Note
	Args []string `json:"args"`
}

func (ReadFile) Type() ActionType      { return ActionReadFile }
func (WriteFile) Type() ActionType     { return ActionWriteFile }
func (AppendFile) Type() ActionType    { return ActionAppendFile }
func (CreateFile) Type() ActionType    { return ActionCreateFile }
func (DeleteFile) Type() ActionType    { return ActionDeleteFile }
func (ReplaceInFile) Type() ActionType { return ActionReplaceInFile }
func (ListDir) Type() ActionType       { return ActionListDir }
func (FileInfo) Type() ActionType      { return ActionFileInfo }
func (SearchFiles) Type() ActionType   { return ActionSearchFiles }
func (ApplyPatch) Type() ActionType    { return ActionApplyPatch }
func (MoveFile) Type() ActionType      { return ActionMoveFile }
func (RenameFile) Type() ActionType    { return ActionRenameFile }
func (ShellCommand) Type() ActionType  { return ActionShellCommand }
func (Git) Type() ActionType           { return ActionGit }

func (a ReadFile) Describe() string {
	switch {
	case a.Start != nil && a.End != nil:
		return fmt.Sprintf("Read %s (lines %d-%d)", a.Path, *a.Start, *a.End)
	case a.Start != nil:
		return fmt.Sprintf("Read %s (from line %d)", a.Path, *a.Start)
	case a.End != nil:
		return fmt.Sprintf("Read %s (up to line %d)", a.Path, *a.End)
	}
	return "Read " + a.Path
}

func (a WriteFile) Describe() string {
	return fmt.Sprintf("Write %s (%d bytes)", a.Path, len(a.Content))
}

func (a AppendFile) Describe() string {
	return fmt.Sprintf("Append to %s (%d bytes)", a.Path, len(a.Content))
}

func (a CreateFile) Describe() string {
	if a.Overwrite {
		return "Create " + a.Path + " (overwrite)"
	}
	return "Create " + a.Path
}

func (a DeleteFile) Describe() string {
	if a.Recursive {
		return "Delete " + a.Path + " (recursive)"
	}
	return "Delete " + a.Path
}

func (a ReplaceInFile) Describe() string {
	if a.ReplaceAll {
		return fmt.Sprintf("Replace all %q in %s", a.Search, a.Path)
	}
	return fmt.Sprintf("Replace first %q in %s", a.Search, a.Path)
}

func (a ListDir) Describe() string {
	p := a.Path
	if p == "" {
		p = "."
	}
	var flags []string
	if a.Recursive {
		flags = append(flags, "recursive")
	}
	if a.IncludeHidden {
		flags = append(flags, "hidden")
	}
	if len(flags) == 0 {
		return "List " + p
	}
	return fmt.Sprintf("List %s (%s)", p, strings.Join(flags, ", "))
}

func (a FileInfo) Describe() string { return "Inspect " + a.Path }

func (a SearchFiles) Describe() string {
	p := a.Path
	if p == "" {
		p = "."
	}
	if a.Glob != "" {
		return fmt.Sprintf("Search %q in %s (%s)", a.Pattern, p, a.Glob)
	}
	return fmt.Sprintf("Search %q in %s", a.Pattern, p)
}

func (a ApplyPatch) Describe() string {
	return fmt.Sprintf("Apply patch (%d lines)", strings.Count(strings.TrimRight(a.Patch, "\n"), "\n")+1)
}

func (a MoveFile) Describe() string { return fmt.Sprintf("Move %s -> %s", a.From, a.To) }

func (a RenameFile) Describe() string { return fmt.Sprintf("Rename %s to %s", a.Path, a.NewName) }

func (a ShellCommand) Describe() string {
	if len(a.Args) == 0 {
		return "Run " + a.Command
	}
	return "Run " + a.Command + " " + strings.Join(a.Args, " ")
}

func (a Git) Describe() string { return "git " + strings.Join(a.Args, " ") }

// MarshalAction encodes an action with its "type" discriminant, the same
// shape a plan carries on the wire.
func MarshalAction(a Action) ([]byte, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["type"] = a.Type()

	return json.Marshal(fields)
}
