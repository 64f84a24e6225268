// Package trading loads the per-company trading workbooks, merges them
// into one dataset, and computes the ten trading metrics over layered
// price, date, company, unit and unit-group filters.
//
// Filtering produces new views over a shared immutable record slice;
// the base dataset is never mutated, so grouped reports can fan out
// per-group computations concurrently.
package trading
