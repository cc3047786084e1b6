package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product cannot be found in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrStoreUnavailable is returned when the catalog store cannot be reached
	ErrStoreUnavailable = errors.New("catalog store unavailable")

	// ErrLookupTimeout is returned when a single store lookup exceeds its deadline
	ErrLookupTimeout = errors.New("store lookup timed out")

	// ErrParserFailure is returned when the AI line-item parser errors or
	// returns unparsable content
	ErrParserFailure = errors.New("line item parser failed")

	// ErrERPFailure is returned when a Sankhya gateway request fails
	ErrERPFailure = errors.New("sankhya request failed")
)
