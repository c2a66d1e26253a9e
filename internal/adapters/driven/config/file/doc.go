// Package file provides a TOML-file implementation of the ConfigStore port.
//
// Nested tables are flattened into dot-separated keys, so
//
//	[server]
//	port = 8081
//
// is read with GetInt("server.port").
package file
