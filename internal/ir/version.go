package ir

// Version constants for the schema IR and the tool.
const (
	// IRVersion is the schema IR version. It is part of every SchemaHash.
	IRVersion = "1"

	// Version is the physprop release version.
	Version = "0.1.0"
)
