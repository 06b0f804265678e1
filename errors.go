// SPDX-License-Identifier: MIT

package publicchat

import (
	"fmt"
)

// ErrSigningFailed is returned by send operations when the local key
// material is missing or unusable. This is a configuration problem,
// never retried.
var ErrSigningFailed = fmt.Errorf("publicchat: message signing failed")

// ErrSignatureInvalid marks an inbound record whose signature did not
// verify against the claimed sender key. Records carrying it are
// dropped from fetch results, they are not surfaced as call errors.
var ErrSignatureInvalid = fmt.Errorf("publicchat: invalid message signature")

// ErrForbidden is returned when the server rejects a privileged
// operation, usually a moderation delete by a non-moderator.
var ErrForbidden = fmt.Errorf("publicchat: permission denied by server")

// ErrRetriesExhausted wraps the last failure of a mutating call after
// the attempt bound was spent.
type ErrRetriesExhausted struct {
	Attempts int
	Last     error
}

func (e ErrRetriesExhausted) Error() string {
	return fmt.Sprintf("publicchat: gave up after %d attempts: %s", e.Attempts, e.Last)
}

func (e ErrRetriesExhausted) Unwrap() error { return e.Last }
