package client

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema names accepted by request.schema.
const (
	schemaOCR       = "ocr.json"
	schemaGPT       = "gpt.json"
	schemaComplete  = "complete.json"
	schemaTemplate  = "template.json"
	schemaTemplates = "templates.json"
	schemaUser      = "user.json"
	schemaAuth      = "auth.json"
	schemaRecord    = "record.json"
	schemaHistory   = "history.json"
	schemaUsage     = "usage.json"
	schemaHealth    = "health.json"
	schemaSystem    = "system.json"
)

const schemaBase = "https://frext.local/schemas/"

var schemaSources = map[string]string{
	schemaOCR: `{
		"type": "object",
		"required": ["extractedText", "confidence"],
		"properties": {
			"extractedText": {"type": "string"},
			"confidence": {"type": "number", "minimum": 0, "maximum": 1},
			"processingTime": {"type": "number", "minimum": 0}
		}
	}`,
	schemaGPT: `{
		"type": "object",
		"required": ["summary", "confidence"],
		"properties": {
			"summary": {"type": "string"},
			"categories": {"type": ["array", "null"], "items": {"type": "string"}},
			"extractedData": {"type": ["object", "null"]},
			"confidence": {"type": "number", "minimum": 0, "maximum": 1}
		}
	}`,
	schemaComplete: `{
		"type": "object",
		"required": ["ocrResult", "gptResult"],
		"properties": {
			"ocrResult": {"$ref": "ocr.json"},
			"gptResult": {"$ref": "gpt.json"}
		}
	}`,
	schemaTemplate: `{
		"type": "object",
		"required": ["id", "name"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"name": {"type": "string"},
			"description": {"type": "string"},
			"category": {"type": "string"},
			"expectedFields": {"type": ["array", "null"], "items": {"type": "string"}},
			"usageCount": {"type": "integer", "minimum": 0},
			"isActive": {"type": "boolean"}
		}
	}`,
	schemaTemplates: `{
		"type": "array",
		"items": {"$ref": "template.json"}
	}`,
	schemaUser: `{
		"type": "object",
		"required": ["id", "email"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"email": {"type": "string"},
			"name": {"type": "string"},
			"avatar": {"type": "string"},
			"createdAt": {"type": "string"}
		}
	}`,
	schemaAuth: `{
		"type": "object",
		"required": ["token", "user"],
		"properties": {
			"token": {"type": "string", "minLength": 1},
			"user": {"$ref": "user.json"}
		}
	}`,
	schemaRecord: `{
		"type": "object",
		"required": ["id", "status"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"fileName": {"type": "string"},
			"templateId": {"type": "string"},
			"status": {"enum": ["pending", "processing", "completed", "failed"]},
			"ocrResult": {"$ref": "ocr.json"},
			"gptResult": {"$ref": "gpt.json"}
		}
	}`,
	schemaHistory: `{
		"type": "object",
		"required": ["items"],
		"properties": {
			"items": {"type": "array", "items": {"$ref": "record.json"}},
			"total": {"type": "integer", "minimum": 0},
			"page": {"type": "integer", "minimum": 0},
			"limit": {"type": "integer", "minimum": 0}
		}
	}`,
	schemaUsage: `{
		"type": "object",
		"properties": {
			"totalProcessed": {"type": "integer", "minimum": 0},
			"monthlyProcessed": {"type": "integer", "minimum": 0},
			"remainingQuota": {"type": "integer"},
			"averageConfidence": {"type": "number", "minimum": 0, "maximum": 1}
		}
	}`,
	schemaHealth: `{
		"type": "object",
		"required": ["status"],
		"properties": {"status": {"type": "string"}}
	}`,
	schemaSystem: `{
		"type": "object",
		"properties": {
			"version": {"type": "string"},
			"ocrEngine": {"type": "string"},
			"gptModel": {"type": "string"},
			"status": {"type": "string"}
		}
	}`,
}

type schemaSet struct {
	byName map[string]*jsonschema.Schema
}

var (
	schemasOnce sync.Once
	schemas     *schemaSet
	schemasErr  error
)

// responseSchemas compiles the response schemas once per process.
func responseSchemas() (*schemaSet, error) {
	schemasOnce.Do(func() {
		schemas, schemasErr = compileSchemas()
	})
	return schemas, schemasErr
}

func compileSchemas() (*schemaSet, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	for name, src := range schemaSources {
		if err := compiler.AddResource(schemaBase+name, strings.NewReader(src)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}

	set := &schemaSet{byName: make(map[string]*jsonschema.Schema, len(schemaSources))}
	for name := range schemaSources {
		s, err := compiler.Compile(schemaBase + name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		set.byName[name] = s
	}
	return set, nil
}

// validate checks a decoded JSON value against the named schema. Unknown
// names and a nil set pass.
func (s *schemaSet) validate(name string, v any) error {
	if s == nil || name == "" {
		return nil
	}
	schema, ok := s.byName[name]
	if !ok {
		return nil
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema %s: %w", name, err)
	}
	return nil
}
