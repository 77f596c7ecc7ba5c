// Package expect drives an interactive program attached to a pseudo-terminal.
//
// A Process is spawned with Spawn and then consumed synchronously: Expect blocks until one of a
// set of patterns appears in the output that has not been consumed yet, SendLine answers prompts,
// and Wait collects the exit status once the program is done. Output that an earlier Expect call
// has consumed is never scanned again, so a sequence of Expect calls asserts the order in which
// text appears.
//
// A Process is not safe for concurrent use; it belongs to the test scope that spawned it, which
// should register Close as a cleanup.
package expect
