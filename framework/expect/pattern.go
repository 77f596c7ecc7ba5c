package expect

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern is something that Expect can look for in the output of a process.
type Pattern interface {
	// find returns the position of the first match in s.
	find(s string) (start, end int, ok bool)
	String() string
}

type exactPattern string

// Exact matches a literal substring.
func Exact(s string) Pattern { return exactPattern(s) }

func (p exactPattern) find(s string) (int, int, bool) {
	i := strings.Index(s, string(p))
	if i < 0 {
		return 0, 0, false
	}
	return i, i + len(p), true
}

func (p exactPattern) String() string { return fmt.Sprintf("%q", string(p)) }

type regexpPattern struct {
	re *regexp.Regexp
}

// Regexp matches a regular expression. It panics if the expression does not compile, like
// regexp.MustCompile; use Re with an already compiled expression to handle the error yourself.
func Regexp(expr string) Pattern { return regexpPattern{regexp.MustCompile(expr)} }

// Re matches a compiled regular expression.
func Re(re *regexp.Regexp) Pattern { return regexpPattern{re} }

func (p regexpPattern) find(s string) (int, int, bool) {
	loc := p.re.FindStringIndex(s)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

func (p regexpPattern) String() string { return "/" + p.re.String() + "/" }

// earliestMatch finds the pattern whose match starts first in s. When several patterns match at
// the same position, the one listed first wins.
func earliestMatch(s string, patterns []Pattern) (index, start, end int) {
	index = -1
	for i, p := range patterns {
		st, en, ok := p.find(s)
		if ok && (index < 0 || st < start) {
			index, start, end = i, st, en
		}
	}
	return index, start, end
}

func describePatterns(patterns []Pattern) string {
	names := make([]string, 0, len(patterns))
	for _, p := range patterns {
		names = append(names, p.String())
	}
	return strings.Join(names, " or ")
}
