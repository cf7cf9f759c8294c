package store

import "errors"

// Error variables for store operations.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnknownAction      = errors.New("unknown action")
	ErrUnknownSection     = errors.New("unknown advanced config section")
	ErrInvalidSectionData = errors.New("invalid advanced config data")
	ErrNotFound           = errors.New("not found")
	ErrIDRequired         = errors.New("id is required")
	ErrBacklogUnsupported = errors.New("work context has no backlog")
	ErrInvalidDay         = errors.New("invalid worklog day (want YYYY-MM-DD)")
	ErrNegativeDuration   = errors.New("duration must not be negative")
)
