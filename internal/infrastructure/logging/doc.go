// Package logging provides structured logging for ledmatrixd.
//
// It wraps log/slog so every package logs through the same handler with
// consistent default fields (service, version), level filtering and a
// choice of JSON or text output.
//
// Configured via the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
package logging
