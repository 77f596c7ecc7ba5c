package framework

import "golang.org/x/exp/slices"

// Capabilities is a list of strings representing optional features of the test environment. The
// meanings of these strings are defined by the session configuration (see config.Session.Capabilities).
type Capabilities []string

// Has returns true if the specified string appears in the list.
func (cs Capabilities) Has(name string) bool {
	return slices.Contains(cs, name)
}

// Sorted returns a sorted copy of the list.
func (cs Capabilities) Sorted() Capabilities {
	ret := slices.Clone(cs)
	slices.Sort(ret)
	return ret
}
