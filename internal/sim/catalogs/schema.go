package catalogs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// catalog file -> schema file
var schemaFiles = map[string]string{
	"content.json":      "content.schema.json",
	"objects.json":      "objects.schema.json",
	"checkpoints.json":  "checkpoints.schema.json",
	"mood_profile.json": "mood_profile.schema.json",
}

// LoadVerified validates each authored file against its JSON Schema before the
// normal Load. Schema failures are fatal configuration errors.
func LoadVerified(dir, schemaDir string) (*Catalogs, error) {
	for file, schemaName := range schemaFiles {
		schema, err := jsonschema.Compile(filepath.Join(schemaDir, schemaName))
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", schemaName, err)
		}
		raw, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return nil, err
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if err := schema.Validate(v); err != nil {
			return nil, fmt.Errorf("%s: schema: %w", file, err)
		}
	}
	return Load(dir)
}
