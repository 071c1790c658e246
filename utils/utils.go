package utils

import "strings"

func StringInSlice(a string, list []string) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}

// GetLeadingStringInBetweenSquareBrackets splits a string like
// "[200 OK] {...}" into its bracketed prefix and the rest.
// Elasticsearch response String() output prepends the status
// this way, and the JSON body after it is what callers want.
func GetLeadingStringInBetweenSquareBrackets(str string) (bracketString string, theRestString string) {
	var (
		start = "["
		end   = "]"
	)
	s := strings.Index(str, start)
	if s == -1 {
		return
	}

	// An open bracket past index 0 belongs to an array inside
	// the payload, not to a prepended status code
	if s != 0 {
		return
	}

	e := strings.Index(str[s:], end)
	if e == -1 {
		return
	}

	return strings.Trim(str[s:e+1], " "), strings.Trim(str[e+1:], " ")
}
