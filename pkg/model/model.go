package model

import (
	"errors"
)

var (
	ErrDraftNotFound   = errors.New("draft not found")
	ErrListingNotFound = errors.New("advertisement not found")
	ErrNoUserToken     = errors.New("no stored token for user")
)

// Violation is a single validation finding. Fatal violations block the
// operation that produced them, non-fatal ones are advisory and are returned
// to the caller as warnings.
type Violation struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

func (v Violation) Error() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

// HasFatal reports whether any violation in the list blocks submission.
func HasFatal(vs []Violation) bool {
	for _, v := range vs {
		if v.Fatal {
			return true
		}
	}
	return false
}

// Fatal filters the list down to blocking violations.
func Fatal(vs []Violation) []Violation {
	out := make([]Violation, 0, len(vs))
	for _, v := range vs {
		if v.Fatal {
			out = append(out, v)
		}
	}
	return out
}

// Warnings filters the list down to advisory violations.
func Warnings(vs []Violation) []Violation {
	out := make([]Violation, 0, len(vs))
	for _, v := range vs {
		if !v.Fatal {
			out = append(out, v)
		}
	}
	return out
}
