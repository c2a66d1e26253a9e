package driven

import "context"

// Normaliser converts the raw bytes of a file into indexable text.
type Normaliser interface {
	// SupportedExtensions returns the lower-case file extensions handled, with the dot.
	SupportedExtensions() []string

	// Priority breaks ties when two normalisers claim an extension. Higher wins.
	Priority() int

	// Normalise returns the text content of raw.
	Normalise(ctx context.Context, raw []byte) (string, error)
}

// NormaliserRegistry selects a Normaliser by file name.
type NormaliserRegistry interface {
	// Get returns the normaliser for a file name, matched on its extension
	// without regard to case.
	Get(name string) (Normaliser, bool)

	// Supports reports whether any normaliser handles the file name.
	Supports(name string) bool
}
