// Package framework contains the low-level implementation of the test harness infrastructure
// that is not specific to any one scenario. The base package contains shared types such as
// Logger; other components are in the subpackages.
//
// The general model is:
//
// 1. The harness drives a single tool under test (the conversion utility) by spawning it on a
// pseudo-terminal (package expect) and reading its console output.
//
// 2. The harness can run arbitrary shell commands on the test host (package shell), which
// fixtures use to put the host into the state a scenario needs and to put it back afterward.
//
// 3. There is a general notion of a test scope which is similar to Go's testing.T (package
// suite), allowing pieces of test logic to be associated with a test identifier, to register
// cleanups, and to accumulate success/failure results.
//
// The domain-specific code that knows what is being tested is responsible for deciding what
// command line to run, which output to wait for, and what to break in between.
package framework
