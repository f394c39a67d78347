// Package dataset loads and partitions the training records a lattice
// is trained against: deterministic round-robin assignment of records to
// ranks, and a single-pass computation of the dataset's global mean.
package dataset
