package ordering

import "errors"

// ErrInvalidInput marks a batch the caller should never have built:
// an empty or duplicate level id or a non-finite number. An ordering
// violation is not an error; see Result.
var ErrInvalidInput = errors.New("invalid level adjustment")
