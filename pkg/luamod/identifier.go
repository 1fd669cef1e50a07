// SPDX-License-Identifier: MPL-2.0

package luamod

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentifier is the sentinel error wrapped by InvalidIdentifierError.
var ErrInvalidIdentifier = errors.New("invalid module identifier")

type (
	// Identifier is the string a script passes to require, e.g. "util/strings".
	// Equality is exact string equality.
	Identifier string

	// InvalidIdentifierError is returned when an Identifier is empty or
	// contains characters a require literal cannot carry.
	InvalidIdentifierError struct {
		Value  Identifier
		Reason string
	}
)

// String returns the identifier text.
func (id Identifier) String() string { return string(id) }

// IsValid returns whether the Identifier could appear inside require("...").
// It must be non-empty and must not contain a double quote or a line break.
func (id Identifier) IsValid() (bool, []error) {
	switch {
	case id == "":
		return false, []error{&InvalidIdentifierError{Value: id, Reason: "must not be empty"}}
	case strings.ContainsAny(string(id), "\"\r\n"):
		return false, []error{&InvalidIdentifierError{Value: id, Reason: "must not contain quotes or line breaks"}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid module identifier %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidIdentifier for errors.Is() compatibility.
func (e *InvalidIdentifierError) Unwrap() error { return ErrInvalidIdentifier }

// Identifiers converts raw strings into identifiers, validating each one.
func Identifiers(raw []string) ([]Identifier, error) {
	ids := make([]Identifier, 0, len(raw))
	for _, r := range raw {
		id := Identifier(r)
		if valid, errs := id.IsValid(); !valid {
			return nil, errs[0]
		}
		ids = append(ids, id)
	}
	return ids, nil
}
