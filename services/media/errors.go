package media

import (
	"errors"
	"fmt"
)

// IntegrityError marks a pose image record in an impossible state, such as
// carrying no storage reference at all or pointing at a local id whose
// bytes are gone. Reported, never silently dropped.
type IntegrityError struct {
	ImageID string
	Err     error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("pose image %s integrity fault: %v", e.ImageID, e.Err)
}
func (e *IntegrityError) Unwrap() error { return e.Err }

// ErrReconcileBusy is returned when another run already holds the record's
// reconcile lock.
var ErrReconcileBusy = errors.New("image reconciliation already in flight")

// IsIntegrity reports whether err is an IntegrityError.
func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
