// Package batch runs YAML scenarios and preset surveys through the engine.
//
// # Scenarios
//
// A scenario is a list of steps. Each step is a request (command, preset or
// explicit metric, coordinates and source) plus two optional controls:
// save archives the result and expect fails the run when the verification
// status differs.
//
//	name: vacuum checks
//	steps:
//	  - command: verify
//	    preset: schwarzschild
//	    expect: satisfied
//	    save: true
package batch
