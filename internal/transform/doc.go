// Package transform defines the named line transformations the session
// applies to user input. Each Transformer turns one input line into a
// Result and can reverse that Result for round-trip verification.
package transform
