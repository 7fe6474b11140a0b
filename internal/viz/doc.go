// Package viz renders computed components in the terminal.
//
//   - [ComponentTable]: lipgloss table of nonzero components
//   - [ProfilePlot]: asciigraph plot of one component along a coordinate
//   - [Browser]: bubbletea viewer with one tab per tensor
//
// # Key Bindings
//
//	↑/↓ j/k   - Move between components
//	Tab ←/→   - Switch tensor
//	T         - Cycle color themes
//	Q         - Quit
package viz
