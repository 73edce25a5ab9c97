// Package progress reports batch progress to the operator. Bars are drawn
// only when the output is a terminal.
package progress
