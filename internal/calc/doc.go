// Package calc is the command layer shared by the CLI and the batch runner.
// A Request names a command and its inputs; Do builds a fresh arena, runs the
// engine and returns the output envelope together with the component lists
// that the archive and the viewers consume.
package calc
