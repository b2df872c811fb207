package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError  = "error"
	FieldPath   = "path"
	FieldInput  = "input"
	FieldOutput = "output"

	// Configuration fields.
	FieldConfig     = "config"
	FieldLoadedFrom = "loaded_from"
	FieldWarning    = "warning"

	// Data fields.
	FieldValues  = "values"
	FieldType    = "type"
	FieldAxis    = "axis"
	FieldReducer = "reducer"
	FieldOffset  = "offset"
	FieldBytes   = "bytes"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
