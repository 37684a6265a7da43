package attendance

import "errors"

// ErrVenueNotFound indicates the designated venue channel does not exist.
var ErrVenueNotFound = errors.New("venue channel not found")
