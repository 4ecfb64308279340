// Package scan implements the repository scan command: it discovers git
// metadata directories under an input root, maps each one to a report path
// under an output root, and dispatches per-repository analysis across a
// bounded pool of workers.
package scan
