// Package role normalizes role strings coming from tokens and employee rows
// so that comparisons do not depend on how the value was typed.
package role

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	Admin    = "Admin"
	Manager  = "Manager"
	Hr       = "Hr"
	Employee = "Employee"
)

// Known lists every role an employee row may carry.
var Known = []string{Admin, Manager, Hr, Employee}

// Approvers may approve or reject leave requests unless configured otherwise.
var Approvers = []string{Admin, Manager}

// NormalizeRole trims, collapses inner whitespace and title-cases each word:
// "  aDMIN " becomes "Admin". Applying it twice gives the same result.
func NormalizeRole(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return cases.Title(language.Und).String(strings.Join(fields, " "))
}

// IsAllowedRole reports whether role matches any entry of allowed, ignoring
// case and surrounding whitespace. An empty allow-list grants nothing.
func IsAllowedRole(role string, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	r := NormalizeRole(role)
	if r == "" {
		return false
	}
	for _, a := range allowed {
		if NormalizeRole(a) == r {
			return true
		}
	}
	return false
}
