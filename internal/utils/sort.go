package utils

import (
	"regexp"
	"strings"

	"github.com/harentsoaR/hospital-api/internal/apperr"
)

const DefaultSort = "-createdAt"

var sortField = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// ParseSort splits "-field" / "field" into a field name and direction.
// An empty value means DefaultSort.
func ParseSort(s string) (field string, desc bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultSort
	}
	if strings.HasPrefix(s, "-") {
		desc = true
		s = s[1:]
	}
	if !sortField.MatchString(s) {
		return "", false, apperr.Validation("invalid sort field: " + s)
	}
	return s, desc, nil
}
