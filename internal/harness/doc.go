// Package harness runs end-to-end completion scenarios.
//
// A scenario is a YAML file declaring protocols, initial rules, a
// completion budget, and expectations: the completion result, term
// normal forms, and (via golden files) the exact final dump. Scenarios
// are the conformance suite for the engine: they exercise the same
// path the CLI does, without going through CUE.
//
// Scenario runs are deterministic. Each run is stamped with a run token
// from a RunTokenGenerator (or the scenario's own run_token); tests
// inject a fixed generator when they assert on the token. Golden files
// hold only the final dump, never the token.
package harness
