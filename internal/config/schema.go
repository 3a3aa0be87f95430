package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// planSchema describes a plan document.
const planSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["url"],
  "properties": {
    "url":         {"type": "string", "minLength": 1},
    "concurrency": {"type": "integer", "minimum": 1},
    "requests":    {"type": "integer", "minimum": 0},
    "method":      {"type": "string", "enum": ["GET", "POST", "PUT", "PATCH", "DELETE", "get", "post", "put", "patch", "delete"]},
    "timeout":     {"type": ["string", "number"], "minLength": 1, "exclusiveMinimum": 0},
    "verifyTls":   {"type": "boolean"},
    "headers": {
      "type": "object",
      "additionalProperties": {"type": ["string", "number", "boolean"]}
    },
    "headersFile": {"type": "string", "minLength": 1},
    "payload":     {"type": "string"},
    "payloadFile": {"type": "string", "minLength": 1}
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("plan.json", strings.NewReader(planSchema)); err != nil {
			compileErr = fmt.Errorf("invalid plan schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("plan.json")
	})
	return compiledSchema, compileErr
}

// SchemaErrors lists the schema violations of a plan document.
type SchemaErrors []error

func (se SchemaErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("plan does not match schema: ")
	for i, err := range se {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// validateDocument checks a decoded JSON document against the plan schema.
func validateDocument(doc interface{}) error {
	s, err := schema()
	if err != nil {
		return err
	}

	err = s.Validate(doc)
	if err == nil {
		return nil
	}

	if validationErr, ok := err.(*jsonschema.ValidationError); ok {
		errs := leafErrors(validationErr)
		if len(errs) == 0 {
			errs = SchemaErrors{err}
		}
		return errs
	}
	return SchemaErrors{err}
}

// leafErrors flattens the cause tree, keeping the most specific messages.
func leafErrors(err *jsonschema.ValidationError) SchemaErrors {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		return SchemaErrors{fmt.Errorf("at %s: %s", location, err.Message)}
	}

	var errs SchemaErrors
	for _, cause := range err.Causes {
		errs = append(errs, leafErrors(cause)...)
	}
	return errs
}
