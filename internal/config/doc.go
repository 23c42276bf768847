// Package config loads termcore settings.
//
// Settings are layered, each layer overriding the one before:
//
//	defaults  (Default)
//	TOML file (*.toml)
//	YAML file (*.yaml, *.yml)
//	environment (TERMCORE_*)
//
// A missing file is skipped. Watch reloads a file whenever it changes on
// disk and hands the new Config to a callback.
package config
