// Package codereport loads generated client code reports and computes the
// change set between two report snapshots for changelog classification.
package codereport
