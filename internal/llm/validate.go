package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled holds compiled schemas keyed by name and definition digest, so
// two schemas sharing a name never share a validator.
var compiled sync.Map // map[string]*jsonschema.Schema

// validateResponse checks raw against schema. A nil schema always passes.
// Failures are *ErrInvalidResponse carrying the offending content.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("invalid JSON: %w", err),
		}
	}

	sch, err := compileSchema(schema)
	if err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("compile schema %q: %w", schema.Name, err),
		}
	}

	if err := sch.Validate(parsed); err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("schema validation failed: %w", err),
		}
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	// jsonschema wants a decoded JSON value, not the Go map as built.
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	sum := sha256.Sum256(def)
	key := schema.Name + "@" + hex.EncodeToString(sum[:8])

	if cached, ok := compiled.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}

	var doc any
	if err := json.Unmarshal(def, &doc); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", key)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	compiled.Store(key, sch)
	return sch, nil
}
