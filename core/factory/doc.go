// Package factory provides a small generic registry used to instantiate
// modules such as submission sinks from configuration. Modules are defined by
// a type string and a map of raw settings:
//
//	sinks:
//	  - type: jsonl
//	    conf:
//	      path: submissions.jsonl
//
// Factories decode the settings into typed structs with Decode and return the
// concrete implementation.
package factory
