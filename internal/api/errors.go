package api

import "errors"

// Errors specific to the sketch-session state machine and command
// dispatch; tree-validation, resolver, kernel, and file-format errors
// surface unchanged from the packages that produce them (§7's
// propagation policy applies at this layer too: nothing here wraps or
// hides them).
var (
	ErrUnknownSession   = errors.New("api: unknown sketch session")
	ErrDuplicateEntity  = errors.New("api: duplicate entity local id")
	ErrUnknownEntity    = errors.New("api: unknown entity local id")
	ErrUnknownCommand   = errors.New("api: unknown command kind")
)
