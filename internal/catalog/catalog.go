// Package catalog ships the static catalogue of scenario prompts and canned
// response variants the matcher queries. The content mirrors the trained
// storefront scenarios; the engine treats it as an opaque data source.
package catalog

import "github.com/kctmenswear/atelier-engine/internal/engine"

// Static is an immutable in-memory catalogue source.
type Static struct {
	scenarios []engine.Scenario
}

// NewStatic wraps a fixed scenario list.
func NewStatic(scenarios []engine.Scenario) *Static {
	return &Static{scenarios: scenarios}
}

// Default returns the built-in storefront catalogue.
func Default() *Static {
	return NewStatic(defaultScenarios)
}

// Scenarios implements engine.Source.
func (s *Static) Scenarios() []engine.Scenario {
	return s.scenarios
}
