package todo

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/tasklist-go/internal/utils"
)

//go:embed task.schema.json
var embeddedSchema string

const embeddedSchemaURL = "task.schema.json"

// EmbeddedSchemaSource is the Source of the built-in schema.
const EmbeddedSchemaSource = "embedded"

// Schema is a compiled JSON Schema for a single task record.
type Schema struct {
	Source   string // "embedded" or the schema file path
	compiled *jsonschema.Schema
}

var (
	defaultSchemaOnce sync.Once
	defaultSchema     *Schema
)

// DefaultSchema returns the built-in record schema.
func DefaultSchema() *Schema {
	defaultSchemaOnce.Do(func() {
		compiler := newCompiler()
		if err := compiler.AddResource(embeddedSchemaURL, strings.NewReader(embeddedSchema)); err != nil {
			panic(fmt.Sprintf("todo: add embedded schema: %v", err))
		}
		compiled, err := compiler.Compile(embeddedSchemaURL)
		if err != nil {
			panic(fmt.Sprintf("todo: compile embedded schema: %v", err))
		}
		defaultSchema = &Schema{Source: EmbeddedSchemaSource, compiled: compiled}
	})
	return defaultSchema
}

// LoadSchema compiles the record schema stored at path.
func LoadSchema(path string) (*Schema, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("schema file not found: %s", absPath)
		}
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	compiled, err := newCompiler().Compile(absPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema file: %w", err)
	}
	return &Schema{Source: absPath, compiled: compiled}, nil
}

func newCompiler() *jsonschema.Compiler {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	return compiler
}

// ValidateRecord checks one decoded JSON value against the schema.
// Each returned error is a *ValidationError whose Field is the path inside
// the record.
func (s *Schema) ValidateRecord(v interface{}) []error {
	if s == nil || s.compiled == nil {
		return nil
	}
	err := s.compiled.Validate(v)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []error{err}
	}
	var errs []error
	collectSchemaErrors(&errs, ve)
	return errs
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		field := utils.JSONPointerToPath(err.InstanceLocation)
		if field == "" {
			field = "record"
		}
		*errs = append(*errs, &ValidationError{
			Field: field,
			Err:   errors.New(err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}
