// package repository defines the interfaces for the data persistence layer.
// These interfaces abstract the underlying database implementation from the service layer.
package repository

import (
	"context"

	"github.com/aegis-campus/aegis/internal/domain"
	"github.com/jmoiron/sqlx"
)

// DomainRepository defines the contract for the domain registry.
type DomainRepository interface {
	// CreateDomain inserts a new domain and, when firstMemberID is non-empty,
	// registers that authority as the sole member and sets its weak domain
	// reference. The whole operation runs in the given transaction.
	// It returns apperrors.DomainAlreadyExistsError on a duplicate name.
	CreateDomain(ctx context.Context, tx *sqlx.Tx, d domain.Domain, firstMemberID string) (*domain.Domain, error)

	// ListDomains returns all domains with their member lists resolved to
	// authority summaries.
	ListDomains(ctx context.Context) ([]domain.DomainWithMembers, error)

	// GetDomainByID retrieves a single domain with members.
	// The ext argument allows execution within a transaction (*sqlx.Tx)
	// or directly on a DB connection (*sqlx.DB).
	// It returns apperrors.ErrNotFound if the domain does not exist.
	GetDomainByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.DomainWithMembers, error)

	// UpdateDomain applies a partial update: nil fields are left untouched.
	// It returns apperrors.ErrNotFound if the domain does not exist and
	// apperrors.DomainAlreadyExistsError if the new name collides.
	UpdateDomain(ctx context.Context, id string, name, description *string) (*domain.Domain, error)

	// DeleteDomain removes the domain row. Member cleanup is a separate call
	// so the service can orchestrate the cascade in one transaction.
	DeleteDomain(ctx context.Context, tx *sqlx.Tx, id string) error

	// ClearMembers deletes the domain's member rows and clears the weak
	// domain reference on every authority that pointed at it, returning the
	// IDs of the affected authorities.
	ClearMembers(ctx context.Context, tx *sqlx.Tx, domainID string) ([]string, error)

	// IsMember reports whether the authority appears in the domain's member set.
	IsMember(ctx context.Context, ext sqlx.ExtContext, domainID, authorityID string) (bool, error)
}

// AuthorityRepository defines the contract for authority-specific data operations.
type AuthorityRepository interface {
	// GetAuthorityByID returns the raw authority record, weak domain
	// reference included and unreconciled.
	// It returns apperrors.ErrNotFound if the authority does not exist.
	GetAuthorityByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.Authority, error)

	// FindMembershipDomainID looks the authority up in the domain_members
	// set, returning nil when it belongs to no domain. This is the
	// authoritative side used to reconcile a drifted weak reference.
	FindMembershipDomainID(ctx context.Context, ext sqlx.ExtContext, authorityID string) (*string, error)

	// SetDomainRef persists the weak domain reference (nil clears it). Only
	// the explicit repair path and the registry cascade call this.
	SetDomainRef(ctx context.Context, ext sqlx.ExtContext, authorityID string, domainID *string) error

	// ListDomainPeers returns all authorities in the domain's member set
	// except excludeID, ordered by name.
	ListDomainPeers(ctx context.Context, domainID, excludeID string) ([]domain.Authority, error)
}

// ComplaintQueryRepository defines read-only complaint operations, following the CQRS pattern.
type ComplaintQueryRepository interface {
	// GetComplaintByID retrieves a complaint without its comment log.
	// Returns apperrors.ErrNotFound if the complaint is not found.
	GetComplaintByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.Complaint, error)

	// GetComplaintWithComments retrieves a complaint and its comment log in
	// append order.
	GetComplaintWithComments(ctx context.Context, id string) (*domain.Complaint, error)

	// ListDomainQueue returns the domain's complaints visible to the given
	// authority: unclaimed ones plus those it has accepted itself. Rows with
	// a NULL accepted_by count as unclaimed.
	ListDomainQueue(ctx context.Context, domainID, authorityID string) ([]domain.Complaint, error)

	// ListAssigned returns all complaints currently accepted by the authority.
	ListAssigned(ctx context.Context, authorityID string) ([]domain.Complaint, error)

	// ListByStudent returns a student's own complaints, newest first.
	ListByStudent(ctx context.Context, studentID string) ([]domain.Complaint, error)

	// GetDomainStats computes the per-domain counters in a single query.
	GetDomainStats(ctx context.Context, domainID string) (*domain.DomainStats, error)

	// GetPersonalStats computes the per-authority counters.
	GetPersonalStats(ctx context.Context, authorityID string) (*domain.PersonalStats, error)
}

// ComplaintCommandRepository defines write operations on complaints, following the CQRS pattern.
type ComplaintCommandRepository interface {
	// CreateComplaint inserts a new complaint record.
	// It returns apperrors.ErrNotFound if the referenced domain or student
	// does not exist.
	CreateComplaint(ctx context.Context, c *domain.Complaint) error

	// AcceptIfUnclaimed performs the atomic conditional accept: accepted_by
	// is set (and status forced to progress) only when it is currently NULL
	// or already the same authority. It reports whether a row was updated;
	// false means another authority holds the complaint.
	AcceptIfUnclaimed(ctx context.Context, ext sqlx.ExtContext, complaintID, authorityID string) (bool, error)

	// GetComplaintWithLock retrieves a complaint and acquires a row-level
	// lock ("FOR UPDATE") to serialize transfer and status updates.
	// It returns apperrors.ErrNotFound if the complaint is not found.
	GetComplaintWithLock(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Complaint, error)

	// SetAcceptedBy reassigns the complaint to another authority, leaving
	// the status untouched. Callers validate the transfer rules first.
	SetAcceptedBy(ctx context.Context, tx *sqlx.Tx, complaintID, authorityID string) error

	// UpdateStatus sets the complaint status.
	UpdateStatus(ctx context.Context, tx *sqlx.Tx, complaintID string, status domain.ComplaintStatus) error

	// AppendComment appends to the complaint's comment log. There is
	// deliberately no update or delete counterpart.
	AppendComment(ctx context.Context, tx *sqlx.Tx, c *domain.Comment) error
}
