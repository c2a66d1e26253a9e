// Package normalisers provides implementations of the Normaliser interface
// and the registry that selects one by file extension.
//
// Normalisers are registered with a Registry at startup; NewDefaultRegistry
// returns the set the scanner indexes.
package normalisers
