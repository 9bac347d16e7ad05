package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrAlreadyExists   = errors.New("resource already exists")
	ErrForbidden       = errors.New("operation not permitted")
	ErrUnauthenticated = errors.New("caller is not authenticated")

	ErrInvalidRequest = errors.New("invalid request body")
	ErrValidation     = errors.New("validation failed")

	ErrNoDomain        = errors.New("authority does not belong to a domain")
	ErrMissingComment  = errors.New("status change requires a non-empty comment")
	ErrInvalidStatus   = errors.New("invalid complaint status")
	ErrInvalidPriority = errors.New("invalid complaint priority")
)

// DomainAlreadyExistsError reports a violation of the unique domain name invariant.
type DomainAlreadyExistsError struct{ Name string }

func (e *DomainAlreadyExistsError) Error() string {
	return fmt.Sprintf("domain '%s' already exists", e.Name)
}
func (e *DomainAlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

// ComplaintTakenError is returned when an accept loses to a different
// authority that already holds the complaint.
type ComplaintTakenError struct {
	ComplaintID string
	AcceptedBy  string
}

func (e *ComplaintTakenError) Error() string {
	return fmt.Sprintf("complaint '%s' is already accepted by another authority", e.ComplaintID)
}
func (e *ComplaintTakenError) Is(target error) bool { return target == ErrAlreadyExists }

// WrongDomainError is returned when a transfer target is outside the
// complaint's domain or has no domain at all.
type WrongDomainError struct{ AuthorityID string }

func (e *WrongDomainError) Error() string {
	return fmt.Sprintf("authority '%s' is not in the complaint's domain", e.AuthorityID)
}
func (e *WrongDomainError) Is(target error) bool { return target == ErrInvalidRequest }
