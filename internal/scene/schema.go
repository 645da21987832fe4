package scene

import (
	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of a project file. Unknown keys are
// allowed since the decoders ignore them.
func Schema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	return reflector.Reflect(&Project{})
}
