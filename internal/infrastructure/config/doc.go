// Package config loads and validates the ledmatrixd configuration.
//
// Configuration is read from a YAML file, with hardcoded defaults applied
// first and LEDMATRIXD_* environment variables applied last. All sections
// are validated together so a misconfigured service fails fast at startup
// with every problem reported at once.
package config
