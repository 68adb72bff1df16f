package segment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/c360/streampump/errors"
)

// lookupClassSuffix marks a class name as a lookup class.
const lookupClassSuffix = "Lookup"

// declarationKey holds the declaration of a definition that names its class
// explicitly.
const declarationKey = "declaration"

// definitionSchema is the JSON schema every definition file must satisfy.
const definitionSchema = `{
	"type": "object",
	"required": ["pipeline_id"],
	"properties": {
		"pipeline_id": {"type": "string", "minLength": 1},
		"id": {"type": "string"},
		"module": {"type": "string"},
		"class": {"type": "string"}
	}
}`

var definitionSchemaLoader = gojsonschema.NewStringLoader(definitionSchema)

// Definition is one parsed definition file.
type Definition struct {
	File       string
	PipelineID string
	ID         string
	Module     string
	Class      string

	// Declaration is the declaration body selected by a keyword.
	Declaration *yaml.Node

	// Keyword is the top-level key Declaration was read from.
	Keyword string

	// Raw holds the decoded top-level mapping.
	Raw map[string]any

	root *yaml.Node
}

// IsLookup reports whether the definition constructs a lookup: it has a
// non-null "lookup" key or its class name ends with "Lookup".
func (d *Definition) IsLookup() bool {
	if v, ok := d.Raw["lookup"]; ok && v != nil {
		return true
	}
	return strings.HasSuffix(d.Class, lookupClassSuffix)
}

// Node returns the value node stored under a top-level key, or nil.
func (d *Definition) Node(key string) *yaml.Node {
	if d.root == nil {
		return nil
	}
	for i := 0; i+1 < len(d.root.Content); i += 2 {
		if d.root.Content[i].Value == key {
			return d.root.Content[i+1]
		}
	}
	return nil
}

// Decode decodes the value under a top-level key into out. It reports false
// when the key is absent.
func (d *Definition) Decode(key string, out any) (bool, error) {
	node := d.Node(key)
	if node == nil {
		return false, nil
	}
	if err := node.Decode(out); err != nil {
		return true, errors.WrapInvalid(err, "Definition", "Decode",
			fmt.Sprintf("decode '%s' of %s", key, d.File))
	}
	return true, nil
}

// StringValue returns the string stored under a top-level key, or "".
func (d *Definition) StringValue(key string) string {
	return stringValue(d.Raw, key)
}

// LoadDefinition reads and validates one definition file. Files ending in .yml
// or .yaml are parsed as YAML, every other file as JSON.
func LoadDefinition(file string) (*Definition, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.WrapTransient(err, "Definition", "LoadDefinition", fmt.Sprintf("read %s", file))
	}
	return ParseDefinition(file, data)
}

// ParseDefinition parses and validates a definition read from file.
func ParseDefinition(file string, data []byte) (*Definition, error) {
	if !isYAMLFile(file) && !json.Valid(data) {
		return nil, errors.WrapInvalid(errors.ErrParsingFailed, "Definition", "ParseDefinition",
			fmt.Sprintf("parse JSON %s", file))
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
			"Definition", "ParseDefinition", fmt.Sprintf("parse %s", file))
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.WrapInvalid(errors.ErrInvalidDefinition, "Definition", "ParseDefinition",
			fmt.Sprintf("%s must hold a mapping", file))
	}

	root := doc.Content[0]
	var raw map[string]any
	if err := root.Decode(&raw); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
			"Definition", "ParseDefinition", fmt.Sprintf("decode %s", file))
	}
	if err := validateDefinition(file, raw); err != nil {
		return nil, err
	}

	def := &Definition{
		File:       file,
		PipelineID: stringValue(raw, "pipeline_id"),
		ID:         stringValue(raw, "id"),
		Module:     stringValue(raw, "module"),
		Class:      stringValue(raw, "class"),
		Raw:        raw,
		root:       root,
	}
	if def.ID == "" {
		if name, ok := raw["lookup"].(string); ok {
			def.ID = name
		}
	}
	if node := def.Node(declarationKey); node != nil {
		def.Declaration = node
		def.Keyword = declarationKey
	}
	return def, nil
}

func validateDefinition(file string, raw map[string]any) error {
	result, err := gojsonschema.Validate(definitionSchemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidDefinition, err),
			"Definition", "validateDefinition", fmt.Sprintf("validate %s", file))
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrInvalidDefinition, strings.Join(msgs, "; ")),
			"Definition", "validateDefinition", fmt.Sprintf("validate %s", file))
	}
	return nil
}

func isYAMLFile(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yml", ".yaml":
		return true
	default:
		return false
	}
}

func stringValue(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}
