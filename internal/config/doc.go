// Package config loads pend's optional YAML configuration.
//
// A config file looks like:
//
//	backend: file
//	root: .pend
//	journal: .pend/journal.db
//	log_level: debug
//	format: json
//
// Every field is optional. The file is checked against an embedded CUE
// schema before it is decoded, so unknown keys and out-of-range values
// are rejected with the schema's message rather than silently ignored.
package config
