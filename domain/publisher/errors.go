package publisher

import (
	"errors"
	"fmt"

	"social-scheduler/domain/model"
)

// Kind classifies adapter failures. The dispatcher records a different
// failure reason per kind and skips retries in all cases.
type Kind int

const (
	// KindTransient covers network errors, timeouts and rate limits.
	KindTransient Kind = iota
	// KindAuthorization means the platform rejected the token.
	KindAuthorization
	// KindNoTarget means no postable page/organization exists for this identity.
	KindNoTarget
	// KindUnsupported marks a documented stub adapter.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindNoTarget:
		return "no_target"
	case KindUnsupported:
		return "unsupported"
	default:
		return "transient"
	}
}

// Error is the uniform adapter failure type.
type Error struct {
	Platform model.Platform
	Kind     Kind
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Platform, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Platform, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(platform model.Platform, kind Kind, message string, err error) *Error {
	return &Error{Platform: platform, Kind: kind, Message: message, Err: err}
}

// KindOf extracts the failure class; unrecognized errors count as transient.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindTransient
}

func IsAuthorization(err error) bool { return KindOf(err) == KindAuthorization }
func IsNoTarget(err error) bool      { return KindOf(err) == KindNoTarget }
func IsUnsupported(err error) bool   { return KindOf(err) == KindUnsupported }
