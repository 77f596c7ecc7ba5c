// Package suite contains a test runner framework that is similar to Go's testing package,
// but is run as regular Go application code rather than Go tests. Scenarios that drive the
// conversion tool on a real host are not unit tests, so they are run by the harness binary
// through this package, which adds richer capabilities for configuration, logging, cleanup
// and result reporting.
package suite
