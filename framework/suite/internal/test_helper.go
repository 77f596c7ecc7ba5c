// Package internal contains test helpers for the suite package.
package internal

// RunAction is used only in unit tests, but exported because it has to be in a separate package
// for the stacktrace tests to see a frame outside of package suite.
func RunAction(action func()) {
	action()
}
