package planexec

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/kardolus/chatgpt-agent/agent/types"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

type field struct {
	name     string
	schema   map[string]any
	required bool
	hint     string
}

var (
	stringField   = map[string]any{"type": "string"}
	nonEmptyField = map[string]any{"type": "string", "minLength": 1}
	lineField     = map[string]any{"type": "integer", "minimum": 1}
	flagField     = map[string]any{"type": "boolean"}
	argsField     = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
)

func req(name string, schema map[string]any, hint string) field {
	return field{name: name, schema: schema, required: true, hint: hint}
}

func opt(name string, schema map[string]any, hint string) field {
	return field{name: name, schema: schema, hint: hint}
}

// actionFields is the closed set of action shapes. The plan schema and the
// system prompt are both generated from it.
var actionFields = map[types.ActionType][]field{
	types.ActionReadFile: {
		req("path", nonEmptyField, "file to read"),
		opt("start", lineField, "first line, 1-based"),
		opt("end", lineField, "last line, inclusive"),
	},
	types.ActionWriteFile: {
		req("path", nonEmptyField, "file to write"),
		req("content", stringField, "full new content"),
	},
	types.ActionAppendFile: {
		req("path", nonEmptyField, "file to append to"),
		req("content", stringField, "text to append"),
	},
	types.ActionCreateFile: {
		req("path", nonEmptyField, "file to create"),
		opt("content", stringField, "initial content"),
		opt("overwrite", flagField, "replace an existing file"),
	},
	types.ActionDeleteFile: {
		req("path", nonEmptyField, "file or directory"),
		opt("recursive", flagField, "required for non-empty directories"),
	},
	types.ActionReplaceInFile: {
		req("path", nonEmptyField, "file to edit"),
		req("search", nonEmptyField, "literal text to find"),
		req("replace", stringField, "replacement text"),
		opt("replace_all", flagField, "replace every occurrence instead of the first"),
	},
	types.ActionListDir: {
		opt("path", stringField, "directory, default ."),
		opt("recursive", flagField, "walk subdirectories"),
		opt("include_hidden", flagField, "include dotfiles"),
	},
	types.ActionFileInfo: {
		req("path", nonEmptyField, "file or directory"),
	},
	types.ActionSearchFiles: {
		req("pattern", nonEmptyField, "regular expression"),
		opt("path", stringField, "directory to search, default ."),
		opt("glob", stringField, "file filter such as *.go"),
	},
	types.ActionApplyPatch: {
		req("patch", nonEmptyField, "unified diff with a/ and b/ prefixes"),
	},
	types.ActionMoveFile: {
		req("from", nonEmptyField, "source path"),
		req("to", nonEmptyField, "destination path"),
	},
	types.ActionRenameFile: {
		req("path", nonEmptyField, "file to rename"),
		req("new_name", nonEmptyField, "new base name"),
	},
	types.ActionShellCommand: {
		req("command", nonEmptyField, "program, or a full command line when args is omitted"),
		opt("args", argsField, "arguments passed without a shell"),
	},
	types.ActionGit: {
		req("args", map[string]any{"type": "array", "items": stringField, "minItems": 1}, "git arguments"),
	},
}

var planSchemaState struct {
	once   sync.Once
	err    error
	schema *jsonschema.Schema
}

func planSchema() (*jsonschema.Schema, error) {
	planSchemaState.once.Do(func() {
		src, err := PlanSchemaJSON()
		if err != nil {
			planSchemaState.err = err
			return
		}
		planSchemaState.schema, planSchemaState.err = jsonschema.CompileString("plan.schema.json", src)
	})
	return planSchemaState.schema, planSchemaState.err
}

// PlanSchemaJSON renders the JSON Schema a plan must satisfy. Each action
// is matched to its variant by "type"; unknown fields are rejected.
func PlanSchemaJSON() (string, error) {
	kinds := types.AllActionTypes()
	enum := make([]string, 0, len(kinds))
	defs := map[string]any{}
	branches := make([]any, 0, len(kinds))

	for _, kind := range kinds {
		name := string(kind)
		enum = append(enum, name)

		props := map[string]any{
			"type":   map[string]any{"const": name},
			"reason": stringField,
		}
		required := []string{"type"}
		for _, f := range actionFields[kind] {
			props[f.name] = f.schema
			if f.required {
				required = append(required, f.name)
			}
		}

		defs[name] = map[string]any{
			"type":                 "object",
			"properties":           props,
			"required":             required,
			"additionalProperties": false,
		}
		branches = append(branches, map[string]any{
			"if": map[string]any{
				"required":   []string{"type"},
				"properties": map[string]any{"type": map[string]any{"const": name}},
			},
			"then": map[string]any{"$ref": "#/$defs/" + name},
		})
	}

	defs["action"] = map[string]any{
		"type":       "object",
		"required":   []string{"type"},
		"properties": map[string]any{"type": map[string]any{"enum": enum}},
		"allOf":      branches,
	}

	doc := map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"summary":  stringField,
			"response": stringField,
			"actions":  map[string]any{"type": "array", "items": map[string]any{"$ref": "#/$defs/action"}},
		},
		"$defs": defs,
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// actionReference lists every action with its fields for the system prompt.
// Optional fields carry a trailing "?".
func actionReference() string {
	var b strings.Builder
	for _, kind := range types.AllActionTypes() {
		fields := actionFields[kind]
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			name := f.name
			if !f.required {
				name += "?"
			}
			parts = append(parts, name+": "+f.hint)
		}
		b.WriteString("- ")
		b.WriteString(string(kind))
		b.WriteString(" {")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString("}\n")
	}
	return b.String()
}
