package core

import "context"

// TextGenerator is the opaque language-model capability: given a
// formatted prompt, return freeform text. Implementations must never be
// assumed to produce structured output.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FlightSource returns flight offers for validated search parameters.
type FlightSource interface {
	Search(ctx context.Context, params SearchParams) ([]FlightOffer, error)
}
