// Package config loads the matcher options from a config file, the
// environment (PROTOMATCHER_ prefix, .env files included) and command-line
// flags, in viper's usual order of precedence.
//
// A missing config file is created with default values, and Set writes single
// options back to it.
package config
