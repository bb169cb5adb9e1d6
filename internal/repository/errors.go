package repository

import "errors"

// ErrUnknownReferenceKind is returned for kinds outside the table whitelist.
var ErrUnknownReferenceKind = errors.New("unknown reference kind")
