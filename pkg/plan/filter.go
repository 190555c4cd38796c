package plan

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter is a slash-delimited pattern with optional negation and
// case-insensitive flag, e.g. `/tls\//`, `!/tls\//i`, applied against a
// plan's path.
type Filter struct {
	re     *regexp.Regexp
	negate bool
}

// ParseFilter parses the post-filter syntax documented for the Secret Plan
// Parser: an optional leading `!` negates the match, the pattern itself is
// delimited by `/`, and a trailing `i` makes it case-insensitive.
func ParseFilter(raw string) (*Filter, error) {
	s := raw

	negate := strings.HasPrefix(s, "!")
	if negate {
		s = s[1:]
	}

	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("filter %q: must start with '/'", raw)
	}

	s = s[1:]

	end := strings.LastIndex(s, "/")
	if end < 0 {
		return nil, fmt.Errorf("filter %q: missing closing '/'", raw)
	}

	pattern := s[:end]
	flags := s[end+1:]

	if flags != "" && flags != "i" {
		return nil, fmt.Errorf("filter %q: unsupported flag %q", raw, flags)
	}

	if flags == "i" {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("filter %q: %w", raw, err)
	}

	return &Filter{re: re, negate: negate}, nil
}

// Match reports whether path satisfies the filter.
func (f *Filter) Match(path string) bool {
	if f == nil {
		return true
	}

	matched := f.re.MatchString(path)
	if f.negate {
		return !matched
	}

	return matched
}
