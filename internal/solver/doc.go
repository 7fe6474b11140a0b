// Package solver matches symmetry classes to catalogue solutions of the
// field equations.
//
// Each symmetry tag maps to an [Ansatz]: an ordered list of [Template]
// metrics written in the placeholder coordinates (t, r, theta, phi).
// Solving renames the placeholders to the caller's coordinates, builds the
// metric and its source, and keeps a candidate only if package verify
// proves it. Nothing is assumed correct because it is in the catalogue.
//
//	spherical     schwarzschild, reissner_nordstrom
//	axisymmetric  kerr
//	cosmological  de_sitter, flrw_flat
//
// [Solver.SolveVacuum] tries vacuum templates (a cosmological constant is
// allowed) and returns the first that verifies. [Solver.SolveAll] checks
// every template against its own source.
package solver
