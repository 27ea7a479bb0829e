package services

import "errors"

// ErrNotFound is returned by every collection adapter on a missing key.
// Controllers map it onto the HTTP error taxonomy; anything else becomes
// a 500.
var ErrNotFound = errors.New("document not found")
