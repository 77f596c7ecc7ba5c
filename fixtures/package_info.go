// Package fixtures prepares the test host for a scenario and puts it back afterwards.
//
// Fixtures that change the host register their own teardown with suite.T.Defer, so the teardown
// runs however the scenario ends. A fixture that cannot do its setup reports it with
// suite.T.SetupFailed, which the results distinguish from a failure of the scenario itself.
package fixtures
