package models

import (
	"strings"

	"github.com/cockroachdb/errors"
)

type UserId string

// Credentials are supplied by the authentication gateway in front of the service. They are used to namespace
// drafts and to attribute queued sync actions, never to validate tokens.
type Credentials struct {
	UserId UserId
	Role   Role
}

func (c Credentials) IsZero() bool {
	return c.UserId == ""
}

// KeySeparators split the parts of the storage keys built from user and form ids.
const KeySeparators = ":/"

// ValidateIdentifier rejects the ids that would not map to a single storage key part.
func ValidateIdentifier(kind, id string) error {
	if strings.ContainsAny(id, KeySeparators) {
		return errors.Wrapf(BadParameterError, "%s %q must not contain any of %q", kind, id, KeySeparators)
	}
	return nil
}
