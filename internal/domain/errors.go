package domain

import "errors"

var (
	// ErrMalformedRecord marks an input record that lacks a required field.
	// The whole batch is rejected because downstream joins assume valid keys.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrUnresolvedLookup marks a region name or abbreviation with no table entry.
	ErrUnresolvedLookup = errors.New("unresolved lookup")
)
