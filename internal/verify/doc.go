// Package verify checks a metric against the Einstein field equations
//
//	G_μν + Λ g_μν − 8π T_μν = 0
//
// component by component with the zero test of package expr. A component
// whose normal form is zero is proven; one that samples away from zero is a
// violation; anything else leaves the whole report [Indeterminate].
package verify
