// Package training drives a lattice through the epoch/batch state machine
// that trains it against a dataset: weight initialization, best-matching-
// unit search, neighborhood-weighted batch accumulation, and neighborhood
// radius decay, checking convergence after every epoch.
package training
