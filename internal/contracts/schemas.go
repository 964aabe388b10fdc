package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas
var schemaFS embed.FS

// ключ "EventType/version" -> путь внутри schemaFS
var schemaFiles = map[string]string{
	"SearchTaskEvent/1.0.0":    "schemas/events/search-task/v1.json",
	"SearchResultsEvent/1.0.0": "schemas/events/search-results/v1.json",
}

// базовый адрес ресурсов компилятора, в сеть не ходим: все схемы добавлены через AddResource
const schemaBaseURL = "https://zillow-search-service.local/"

var compiledSchemas = mustCompileSchemas()

func mustCompileSchemas() map[string]*jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	compiled := make(map[string]*jsonschema.Schema, len(schemaFiles))
	for key, path := range schemaFiles {
		raw, err := schemaFS.ReadFile(path)
		if err != nil {
			panic(fmt.Sprintf("contracts: read schema %s: %v", path, err))
		}
		resourceURL := schemaBaseURL + path
		if err := compiler.AddResource(resourceURL, bytes.NewReader(raw)); err != nil {
			panic(fmt.Sprintf("contracts: add schema %s: %v", path, err))
		}
		schema, err := compiler.Compile(resourceURL)
		if err != nil {
			panic(fmt.Sprintf("contracts: compile schema %s: %v", path, err))
		}
		compiled[key] = schema
	}
	return compiled
}

// ValidateEvent проверяет тело сообщения по схеме события
func ValidateEvent(eventType, eventVersion string, body []byte) error {
	key := fmt.Sprintf("%s/%s", eventType, eventVersion)
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema for event '%s' version '%s' not found", eventType, eventVersion)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("message body is not a valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}

	return nil
}
