// Package connectors provides the document sources the service ingests from.
// The filesystem connector walks the upload directory and watches it for changes.
package connectors
