package storage

// Profile captures a named storage configuration that build and import
// workflows can reference at runtime. Destinations (dist, preview, archive)
// are profiles whose provider writes the rendered site tree.
type Profile struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Provider    string            `json:"provider"`
	Config      Config            `json:"config"`
	Fallbacks   []string          `json:"fallbacks,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Default     bool              `json:"default,omitempty"`
}

// ConfigJSONSchema documents the runtime shape expected by storage providers.
// It is intentionally minimal; provider-specific options are captured in the
// nested "options" map.
const ConfigJSONSchema = `
{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "StorageConfig",
  "type": "object",
  "required": ["name", "driver", "dsn"],
  "properties": {
    "name": {
      "type": "string",
      "description": "Human readable identifier for the storage configuration"
    },
    "driver": {
      "type": "string",
      "description": "Driver identifier understood by the storage adapter (e.g. filesystem, sqlite, postgres)"
    },
    "dsn": {
      "type": "string",
      "description": "Connection string, URI, or root path for the provider"
    },
    "readOnly": {
      "type": "boolean",
      "default": false
    },
    "options": {
      "type": "object",
      "additionalProperties": true
    }
  },
  "additionalProperties": false
}
`

// ProfileJSONSchema describes the payload used to define destination profiles.
// The destinations service validates upserts against this schema before
// persisting them.
const ProfileJSONSchema = `
{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "StorageProfile",
  "type": "object",
  "required": ["name", "provider", "config"],
  "properties": {
    "name": {
      "type": "string",
      "pattern": "^[a-z0-9_-]+$",
      "description": "Profile identifier referenced by build workflows"
    },
    "description": {
      "type": "string"
    },
    "provider": {
      "type": "string",
      "description": "Registered provider key resolved by the DI container"
    },
    "config": ` + ConfigJSONSchema + `,
    "fallbacks": {
      "type": "array",
      "items": {
        "type": "string"
      },
      "description": "Ordered list of fallback profiles to consult when the primary is unavailable"
    },
    "labels": {
      "type": "object",
      "additionalProperties": {
        "type": "string"
      }
    },
    "default": {
      "type": "boolean",
      "description": "Marks the profile as the default selection when a build names no destination"
    }
  },
  "additionalProperties": false
}
`
