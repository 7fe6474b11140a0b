// Package equations writes out the Einstein field equation system for a
// source and evaluates its residuals against a concrete metric.
package equations
