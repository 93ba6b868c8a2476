package model

import "errors"

// Error kinds surfaced at the ingestion and configuration boundary.
// Callers match them with errors.Is; the wrapping message names the
// offending file or parameter.
var (
	ErrIO              = errors.New("io error")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAllocation      = errors.New("allocation failure")
	ErrNotFound        = errors.New("not found")
)
