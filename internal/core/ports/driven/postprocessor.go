package driven

import "context"

// PostProcessor transforms document text into chunk texts.
// PostProcessors are chained in a pipeline.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes the document text and the chunks produced so far.
	// A processor that creates chunks (e.g., chunker) receives nil and returns new chunks.
	Process(ctx context.Context, text string, chunks []string) ([]string, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the text through all processors in order.
	// Returns the final chunk texts after all processing.
	Process(ctx context.Context, text string) ([]string, error)
}
