package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/aegis-campus/aegis/internal/apperrors"
	"github.com/aegis-campus/aegis/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var complaintColumns = []string{
	"id", "title", "description", "domain_id", "student_id",
	"accepted_by", "status", "priority", "created_at",
}

type ComplaintRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewComplaintRepository(db *sqlx.DB, log *slog.Logger) *ComplaintRepository {
	return &ComplaintRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (cr *ComplaintRepository) GetComplaintByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.Complaint, error) {
	const op = "internal.repository.postgres.GetComplaintByID"

	query, args, err := cr.sq.Select(complaintColumns...).
		From("complaints").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var c domain.Complaint
	if err := sqlx.GetContext(ctx, ext, &c, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: complaint with id '%s'", apperrors.ErrNotFound, id)
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &c, nil
}

func (cr *ComplaintRepository) GetComplaintWithComments(ctx context.Context, id string) (*domain.Complaint, error) {
	const op = "internal.repository.postgres.GetComplaintWithComments"

	c, err := cr.GetComplaintByID(ctx, cr.db, id)
	if err != nil {
		return nil, err
	}

	query, args, err := cr.sq.Select("id", "complaint_id", "author_id", "body", "created_at").
		From("complaint_comments").
		Where(sq.Eq{"complaint_id": id}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build comments query: %w", op, err)
	}

	if err := cr.db.SelectContext(ctx, &c.Comments, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to get comments: %w", op, err)
	}

	return c, nil
}

func (cr *ComplaintRepository) ListDomainQueue(ctx context.Context, domainID, authorityID string) ([]domain.Complaint, error) {
	const op = "internal.repository.postgres.ListDomainQueue"

	// Unclaimed work plus the caller's own claimed work. NULL accepted_by
	// (including legacy rows never touched by an authority) means unclaimed.
	query, args, err := cr.sq.Select(complaintColumns...).
		From("complaints").
		Where(sq.And{
			sq.Eq{"domain_id": domainID},
			sq.Or{
				sq.Eq{"accepted_by": nil},
				sq.Eq{"accepted_by": authorityID},
			},
		}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var complaints []domain.Complaint
	if err := cr.db.SelectContext(ctx, &complaints, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return complaints, nil
}

func (cr *ComplaintRepository) ListAssigned(ctx context.Context, authorityID string) ([]domain.Complaint, error) {
	const op = "internal.repository.postgres.ListAssigned"

	query, args, err := cr.sq.Select(complaintColumns...).
		From("complaints").
		Where(sq.Eq{"accepted_by": authorityID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var complaints []domain.Complaint
	if err := cr.db.SelectContext(ctx, &complaints, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return complaints, nil
}

func (cr *ComplaintRepository) ListByStudent(ctx context.Context, studentID string) ([]domain.Complaint, error) {
	const op = "internal.repository.postgres.ListByStudent"

	query, args, err := cr.sq.Select(complaintColumns...).
		From("complaints").
		Where(sq.Eq{"student_id": studentID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var complaints []domain.Complaint
	if err := cr.db.SelectContext(ctx, &complaints, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return complaints, nil
}

func (cr *ComplaintRepository) GetDomainStats(ctx context.Context, domainID string) (*domain.DomainStats, error) {
	const op = "internal.repository.postgres.GetDomainStats"

	query, args, err := cr.sq.Select(
		"COUNT(*) AS total",
		"COUNT(*) FILTER (WHERE status = 'new' AND accepted_by IS NULL) AS pending",
		"COUNT(*) FILTER (WHERE status = 'progress') AS in_progress",
		"COUNT(*) FILTER (WHERE status = 'resolved') AS resolved",
		"COUNT(*) FILTER (WHERE priority = 'high' AND status <> 'resolved') AS high_priority_unsettled",
	).
		From("complaints").
		Where(sq.Eq{"domain_id": domainID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var stats domain.DomainStats
	if err := cr.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &stats, nil
}

func (cr *ComplaintRepository) GetPersonalStats(ctx context.Context, authorityID string) (*domain.PersonalStats, error) {
	const op = "internal.repository.postgres.GetPersonalStats"

	query, args, err := cr.sq.Select(
		"COUNT(*) AS total",
		"COUNT(*) FILTER (WHERE status = 'progress') AS in_progress",
		"COUNT(*) FILTER (WHERE status = 'resolved') AS resolved",
	).
		From("complaints").
		Where(sq.Eq{"accepted_by": authorityID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var stats domain.PersonalStats
	if err := cr.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &stats, nil
}

func (cr *ComplaintRepository) CreateComplaint(ctx context.Context, c *domain.Complaint) error {
	const op = "internal.repository.postgres.CreateComplaint"
	log := cr.log.With(slog.String("op", op), slog.String("complaint_id", c.ID))

	query, args, err := cr.sq.Insert("complaints").
		Columns("id", "title", "description", "domain_id", "student_id", "status", "priority", "created_at").
		Values(c.ID, c.Title, c.Description, c.DomainID, c.StudentID, c.Status, c.Priority, c.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := cr.db.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return fmt.Errorf("%s: %w: referenced domain or student does not exist", op, apperrors.ErrNotFound)
		}

		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	log.Info("complaint created")

	return nil
}

// AcceptIfUnclaimed is the single-statement compare-and-set that closes the
// double-accept race: the row is claimed only when accepted_by is NULL or
// already the caller, and status is forced to progress either way.
func (cr *ComplaintRepository) AcceptIfUnclaimed(ctx context.Context, ext sqlx.ExtContext, complaintID, authorityID string) (bool, error) {
	const op = "internal.repository.postgres.AcceptIfUnclaimed"

	query, args, err := cr.sq.Update("complaints").
		Set("accepted_by", authorityID).
		Set("status", domain.StatusProgress).
		Where(sq.And{
			sq.Eq{"id": complaintID},
			sq.Or{
				sq.Eq{"accepted_by": nil},
				sq.Eq{"accepted_by": authorityID},
			},
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: failed to read rows affected: %w", op, err)
	}

	return affected == 1, nil
}

func (cr *ComplaintRepository) GetComplaintWithLock(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Complaint, error) {
	const op = "internal.repository.postgres.GetComplaintWithLock"

	query, args, err := cr.sq.Select(complaintColumns...).
		From("complaints").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var c domain.Complaint
	if err := tx.GetContext(ctx, &c, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: complaint with id '%s'", apperrors.ErrNotFound, id)
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &c, nil
}

func (cr *ComplaintRepository) SetAcceptedBy(ctx context.Context, tx *sqlx.Tx, complaintID, authorityID string) error {
	const op = "internal.repository.postgres.SetAcceptedBy"

	query, args, err := cr.sq.Update("complaints").
		Set("accepted_by", authorityID).
		Where(sq.Eq{"id": complaintID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	return nil
}

func (cr *ComplaintRepository) UpdateStatus(ctx context.Context, tx *sqlx.Tx, complaintID string, status domain.ComplaintStatus) error {
	const op = "internal.repository.postgres.UpdateStatus"

	query, args, err := cr.sq.Update("complaints").
		Set("status", status).
		Where(sq.Eq{"id": complaintID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	return nil
}

func (cr *ComplaintRepository) AppendComment(ctx context.Context, tx *sqlx.Tx, c *domain.Comment) error {
	const op = "internal.repository.postgres.AppendComment"

	query, args, err := cr.sq.Insert("complaint_comments").
		Columns("complaint_id", "author_id", "body").
		Values(c.ComplaintID, c.AuthorID, c.Body).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}
