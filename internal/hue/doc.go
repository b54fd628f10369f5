// Package hue turns a list of color breakpoints into the 256-entry lookup
// table the kernel output is colored with.
//
// A [Palette] keeps its intervals strictly sorted by position. Moving an
// interval past a neighbor swaps it into place one step at a time instead of
// re-sorting, and the table is regenerated synchronously after every edit.
package hue
