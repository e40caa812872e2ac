package fileformat

import "errors"

// ErrMalformedJSON is returned when a document fails structural validation
// against the schema before migration is even attempted.
var ErrMalformedJSON = errors.New("fileformat: malformed document")

// ErrFutureVersion is returned when a document's version is newer than
// CurrentVersion: this build has no migration path forward and must not
// guess at the shape of a format it postdates.
var ErrFutureVersion = errors.New("fileformat: document version is newer than this build supports")

// ErrUnknownFormat is returned when a document's "format" field is not
// FormatTag.
var ErrUnknownFormat = errors.New("fileformat: unrecognized format tag")
