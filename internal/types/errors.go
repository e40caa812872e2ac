package types

import "errors"

// ErrUnknownTag is returned when a tagged-union JSON payload carries a
// "type" discriminant this build does not recognize. The file format
// layer (internal/fileformat) turns this into ErrFutureVersion or
// ErrMalformedJSON depending on context; callers that hit it directly
// should treat it the same way.
var ErrUnknownTag = errors.New("types: unknown tag")
