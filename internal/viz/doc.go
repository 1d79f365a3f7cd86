// Package viz draws redirected walking experiments in the terminal.
//
// [Watch] is a Bubble Tea model that steps one experiment session and shows
// a top-down view on a [Canvas] of braille dots, either of the tracking
// area or of the virtual world.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step while paused
//	V     - Toggle real/virtual view
//	+/-   - Ticks per frame
//	Q     - Quit
package viz
