package credrepo

import "errors"

// ErrDuplicateUsername reports an insert that collided with the unique
// username constraint. Startup seeding treats it as already-provisioned.
var ErrDuplicateUsername = errors.New("duplicate username")
