package query

import (
	"strconv"
	"strings"
)

// Bool parses a query parameter as a boolean flag. Missing or malformed
// values report false.
func Bool(val string) bool {
	b, err := strconv.ParseBool(val)
	return err == nil && b
}

// StringSlice parses a single comma-separated query string
// into a trimmed slice of strings.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}
