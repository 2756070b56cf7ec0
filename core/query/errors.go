package query

import "errors"

var (
	// ErrInvalidConfiguration is returned when a stage is built from options
	// it cannot honor.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrMissingField is returned by a filter in throw mode when a condition
	// references a field absent from a record.
	ErrMissingField = errors.New("missing field")
	// ErrUnsupportedOperator is returned when a filter meets an operator it
	// does not know.
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrUnsupportedStrategy is returned when matching meets a strategy it
	// does not know.
	ErrUnsupportedStrategy = errors.New("unsupported match strategy")
	// ErrInvalidArgument is returned for arguments a call cannot accept.
	ErrInvalidArgument = errors.New("invalid argument")
)
