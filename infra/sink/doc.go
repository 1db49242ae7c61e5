// Package sink provides the submission sinks selectable from configuration:
//
//	log     zerolog line "Formulaire soumis:" (default)
//	jsonl   rotating JSON-lines file
//	sqlite  submissions table
//	mqtt    JSON payload published on a topic
//	influx  battery_form_submission points
//
// Importing the package registers every sink with core/sink.
package sink
