// Package gccdash is the back-end of the GCC roster dashboard.
//
// Usage:
//
//	import "github.com/spektr-org/gccdash/engine"
//
//	eng := engine.New(engine.WithAxes(schema.DefaultAxes()))
//	state, outcome := eng.Search(ds, engine.NewViewState(), engine.Criteria{FirstName: "an"})
//
// The roster package loads the employee dataset (a JSON array of records) from a file
// or URL. The engine package searches, pivots and drills into it and returns
// render-ready output (status message, tables, chart config). All per-user
// view state lives in an explicit engine.ViewState that callers pass in and
// get back.
//
// The server package exposes the engine as a JSON API behind a session login,
// the importer package turns spreadsheet exports into the dataset file, and
// cmd/gccdash wraps the same operations in a CLI.
package gccdash
