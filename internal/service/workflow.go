package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aegis-campus/aegis/internal/apperrors"
	"github.com/aegis-campus/aegis/internal/domain"
	"github.com/aegis-campus/aegis/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// WorkflowService implements the complaint assignment workflow: students
// file complaints, authorities in the complaint's domain accept, transfer,
// and resolve them.
type WorkflowService interface {
	CreateComplaint(ctx context.Context, studentID, title, description, domainID string, priority domain.ComplaintPriority) (*domain.Complaint, error)
	ListStudentComplaints(ctx context.Context, studentID string) ([]domain.Complaint, error)
	ListQueue(ctx context.Context, authorityID string) ([]domain.Complaint, error)
	ListAssigned(ctx context.Context, authorityID string) ([]domain.Complaint, error)
	Accept(ctx context.Context, authorityID, complaintID string) (*domain.Complaint, error)
	Transfer(ctx context.Context, authorityID, complaintID, targetID string) (*domain.Complaint, error)
	UpdateStatus(ctx context.Context, authorityID, complaintID string, status domain.ComplaintStatus, comment string) (*domain.Complaint, error)
	Stats(ctx context.Context, authorityID string) (*domain.DomainStats, *domain.PersonalStats, error)
}

type WorkflowServiceImpl struct {
	BaseService
	sqlDB       *sqlx.DB
	domains     repository.DomainRepository
	authorities repository.AuthorityRepository
	cmd         repository.ComplaintCommandRepository
	query       repository.ComplaintQueryRepository
}

func NewWorkflowService(
	db *sqlx.DB,
	log *slog.Logger,
	domains repository.DomainRepository,
	authorities repository.AuthorityRepository,
	cmd repository.ComplaintCommandRepository,
	query repository.ComplaintQueryRepository,
) *WorkflowServiceImpl {
	return &WorkflowServiceImpl{
		BaseService: NewBaseService(db, log),
		sqlDB:       db,
		domains:     domains,
		authorities: authorities,
		cmd:         cmd,
		query:       query,
	}
}

func (s *WorkflowServiceImpl) CreateComplaint(ctx context.Context, studentID, title, description, domainID string, priority domain.ComplaintPriority) (*domain.Complaint, error) {
	const op = "internal.service.workflow.CreateComplaint"
	log := s.log.With(slog.String("op", op), slog.String("student_id", studentID), slog.String("domain_id", domainID))

	if priority == "" {
		priority = domain.PriorityMedium
	}

	if !priority.Valid() {
		return nil, fmt.Errorf("%w: '%s'", apperrors.ErrInvalidPriority, priority)
	}

	if _, err := s.domains.GetDomainByID(ctx, s.sqlDB, domainID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c := &domain.Complaint{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		DomainID:    domainID,
		StudentID:   studentID,
		Status:      domain.StatusNew,
		Priority:    priority,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.cmd.CreateComplaint(ctx, c); err != nil {
		return nil, err
	}

	log.Info("complaint created", slog.String("complaint_id", c.ID))

	return c, nil
}

func (s *WorkflowServiceImpl) ListStudentComplaints(ctx context.Context, studentID string) ([]domain.Complaint, error) {
	const op = "internal.service.workflow.ListStudentComplaints"

	complaints, err := s.query.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list complaints: %w", op, err)
	}

	return complaints, nil
}

// ListQueue returns the caller's domain queue: unclaimed complaints plus the
// caller's own claimed ones. Another authority's claimed work is never visible.
func (s *WorkflowServiceImpl) ListQueue(ctx context.Context, authorityID string) ([]domain.Complaint, error) {
	const op = "internal.service.workflow.ListQueue"

	domainID, err := resolveDomainID(ctx, s.sqlDB, s.authorities, authorityID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve domain: %w", op, err)
	}

	if domainID == nil {
		return nil, apperrors.ErrNoDomain
	}

	complaints, err := s.query.ListDomainQueue(ctx, *domainID, authorityID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list queue: %w", op, err)
	}

	return complaints, nil
}

func (s *WorkflowServiceImpl) ListAssigned(ctx context.Context, authorityID string) ([]domain.Complaint, error) {
	const op = "internal.service.workflow.ListAssigned"

	complaints, err := s.query.ListAssigned(ctx, authorityID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list assigned complaints: %w", op, err)
	}

	return complaints, nil
}

// Accept claims an unassigned complaint for the calling authority and forces
// its status to progress. The domain check runs before the conflict check,
// and a repeated accept by the current assignee succeeds.
func (s *WorkflowServiceImpl) Accept(ctx context.Context, authorityID, complaintID string) (*domain.Complaint, error) {
	const op = "internal.service.workflow.Accept"
	log := s.log.With(slog.String("op", op), slog.String("complaint_id", complaintID), slog.String("authority_id", authorityID))

	callerDomainID, err := resolveDomainID(ctx, s.sqlDB, s.authorities, authorityID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve domain: %w", op, err)
	}

	c, err := s.query.GetComplaintByID(ctx, s.sqlDB, complaintID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if callerDomainID == nil || *callerDomainID != c.DomainID {
		return nil, fmt.Errorf("%w: complaint belongs to a different domain", apperrors.ErrForbidden)
	}

	// Single compare-and-set statement: the claim succeeds only if the
	// complaint is unclaimed or already ours, so two concurrent accepts
	// cannot both win.
	claimed, err := s.cmd.AcceptIfUnclaimed(ctx, s.sqlDB, complaintID, authorityID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to claim complaint: %w", op, err)
	}

	if !claimed {
		return nil, &apperrors.ComplaintTakenError{ComplaintID: complaintID}
	}

	log.Info("complaint accepted")

	updated, err := s.query.GetComplaintWithComments(ctx, complaintID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to reload complaint: %w", op, err)
	}

	return updated, nil
}

// Transfer reassigns a claimed complaint to another authority in the same
// domain. Only the current assignee may transfer; the status is untouched.
func (s *WorkflowServiceImpl) Transfer(ctx context.Context, authorityID, complaintID, targetID string) (*domain.Complaint, error) {
	const op = "internal.service.workflow.Transfer"
	log := s.log.With(slog.String("op", op), slog.String("complaint_id", complaintID), slog.String("target_id", targetID))

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		c, err := s.cmd.GetComplaintWithLock(ctx, tx, complaintID)
		if err != nil {
			return err
		}

		if c.AcceptedBy == nil || *c.AcceptedBy != authorityID {
			return fmt.Errorf("%w: only the current assignee may transfer", apperrors.ErrForbidden)
		}

		targetDomainID, err := resolveDomainID(ctx, tx, s.authorities, targetID)
		if err != nil {
			return fmt.Errorf("%s: failed to resolve target domain: %w", op, err)
		}

		if targetDomainID == nil || *targetDomainID != c.DomainID {
			return &apperrors.WrongDomainError{AuthorityID: targetID}
		}

		return s.cmd.SetAcceptedBy(ctx, tx, complaintID, targetID)
	})
	if err != nil {
		return nil, err
	}

	log.Info("complaint transferred")

	updated, err := s.query.GetComplaintWithComments(ctx, complaintID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to reload complaint: %w", op, err)
	}

	return updated, nil
}

// UpdateStatus sets the complaint status and appends the mandatory comment.
// Any valid status is reachable from any other: a resolved complaint may be
// reopened. Only the current assignee may change status.
func (s *WorkflowServiceImpl) UpdateStatus(ctx context.Context, authorityID, complaintID string, status domain.ComplaintStatus, comment string) (*domain.Complaint, error) {
	const op = "internal.service.workflow.UpdateStatus"
	log := s.log.With(slog.String("op", op), slog.String("complaint_id", complaintID), slog.String("status", string(status)))

	if !status.Valid() {
		return nil, fmt.Errorf("%w: '%s'", apperrors.ErrInvalidStatus, status)
	}

	// The comment requirement holds even when the new status equals the
	// current one.
	if strings.TrimSpace(comment) == "" {
		return nil, apperrors.ErrMissingComment
	}

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		c, err := s.cmd.GetComplaintWithLock(ctx, tx, complaintID)
		if err != nil {
			return err
		}

		if c.AcceptedBy == nil || *c.AcceptedBy != authorityID {
			return fmt.Errorf("%w: only the current assignee may change status", apperrors.ErrForbidden)
		}

		if err := s.cmd.UpdateStatus(ctx, tx, complaintID, status); err != nil {
			return err
		}

		return s.cmd.AppendComment(ctx, tx, &domain.Comment{
			ComplaintID: complaintID,
			AuthorID:    authorityID,
			Body:        comment,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info("complaint status updated")

	updated, err := s.query.GetComplaintWithComments(ctx, complaintID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to reload complaint: %w", op, err)
	}

	return updated, nil
}

// Stats recomputes the domain-wide and personal counters on every call;
// nothing derived is persisted.
func (s *WorkflowServiceImpl) Stats(ctx context.Context, authorityID string) (*domain.DomainStats, *domain.PersonalStats, error) {
	const op = "internal.service.workflow.Stats"

	domainID, err := resolveDomainID(ctx, s.sqlDB, s.authorities, authorityID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to resolve domain: %w", op, err)
	}

	if domainID == nil {
		return nil, nil, apperrors.ErrNoDomain
	}

	domainStats, err := s.query.GetDomainStats(ctx, *domainID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to get domain stats: %w", op, err)
	}

	personalStats, err := s.query.GetPersonalStats(ctx, authorityID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to get personal stats: %w", op, err)
	}

	return domainStats, personalStats, nil
}
