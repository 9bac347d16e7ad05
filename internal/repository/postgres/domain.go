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

type DomainRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewDomainRepository(db *sqlx.DB, log *slog.Logger) *DomainRepository {
	return &DomainRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (dr *DomainRepository) CreateDomain(ctx context.Context, tx *sqlx.Tx, d domain.Domain, firstMemberID string) (*domain.Domain, error) {
	const op = "internal.repository.postgres.CreateDomain"
	log := dr.log.With(slog.String("op", op), slog.String("domain_name", d.Name))
	log.Info("creating domain")

	query, args, err := dr.sq.Insert("domains").
		Columns("id", "name", "description").
		Values(d.ID, d.Name, d.Description).
		Suffix("RETURNING id, name, description").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build domain insert query: %w", op, err)
	}

	var created domain.Domain

	err = tx.QueryRowxContext(ctx, query, args...).StructScan(&created)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, &apperrors.DomainAlreadyExistsError{Name: d.Name}
		}

		return nil, fmt.Errorf("%s: failed to execute domain insert: %w", op, err)
	}

	if firstMemberID != "" {
		if err := dr.addMember(ctx, tx, created.ID, firstMemberID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	log.Info("domain created successfully", slog.String("domain_id", created.ID))

	return &created, nil
}

func (dr *DomainRepository) addMember(ctx context.Context, tx *sqlx.Tx, domainID, authorityID string) error {
	query, args, err := dr.sq.Insert("domain_members").
		Columns("domain_id", "authority_id").
		Values(domainID, authorityID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build member insert query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return fmt.Errorf("%w: authority with id '%s'", apperrors.ErrNotFound, authorityID)
		}

		return fmt.Errorf("failed to execute member insert: %w", err)
	}

	query, args, err = dr.sq.Update("authorities").
		Set("domain_id", domainID).
		Where(sq.Eq{"id": authorityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build domain ref update query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to set domain ref: %w", err)
	}

	return nil
}

func (dr *DomainRepository) ListDomains(ctx context.Context) ([]domain.DomainWithMembers, error) {
	const op = "internal.repository.postgres.ListDomains"

	query, args, err := dr.sq.Select("id", "name", "description").
		From("domains").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select domains query: %w", op, err)
	}

	var domains []domain.Domain
	if err := dr.db.SelectContext(ctx, &domains, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to get domains: %w", op, err)
	}

	type memberRow struct {
		DomainID string  `db:"member_of"`
		ID       string  `db:"id"`
		Name     string  `db:"name"`
		Email    string  `db:"email"`
		RefID    *string `db:"domain_id"`
	}

	queryMembers, args, err := dr.sq.Select(
		"dm.domain_id AS member_of",
		"a.id", "a.name", "a.email", "a.domain_id",
	).
		From("domain_members dm").
		Join("authorities a ON a.id = dm.authority_id").
		OrderBy("a.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select members query: %w", op, err)
	}

	var rows []memberRow
	if err := dr.db.SelectContext(ctx, &rows, queryMembers, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to get domain members: %w", op, err)
	}

	membersByDomain := make(map[string][]domain.Authority, len(domains))
	for _, row := range rows {
		membersByDomain[row.DomainID] = append(membersByDomain[row.DomainID], domain.Authority{
			ID:       row.ID,
			Name:     row.Name,
			Email:    row.Email,
			DomainID: row.RefID,
		})
	}

	result := make([]domain.DomainWithMembers, len(domains))
	for i, d := range domains {
		result[i] = domain.DomainWithMembers{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			Members:     membersByDomain[d.ID],
		}
	}

	return result, nil
}

func (dr *DomainRepository) GetDomainByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.DomainWithMembers, error) {
	const op = "internal.repository.postgres.GetDomainByID"

	query, args, err := dr.sq.Select("id", "name", "description").
		From("domains").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select domain query: %w", op, err)
	}

	var d domain.Domain
	if err := sqlx.GetContext(ctx, ext, &d, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: domain with id '%s'", apperrors.ErrNotFound, id)
		}

		return nil, fmt.Errorf("%s: failed to get domain: %w", op, err)
	}

	queryMembers, args, err := dr.sq.Select("a.id", "a.name", "a.email", "a.domain_id").
		From("domain_members dm").
		Join("authorities a ON a.id = dm.authority_id").
		Where(sq.Eq{"dm.domain_id": id}).
		OrderBy("a.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select members query: %w", op, err)
	}

	var members []domain.Authority
	if err := sqlx.SelectContext(ctx, ext, &members, queryMembers, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to get domain members: %w", op, err)
	}

	return &domain.DomainWithMembers{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Members:     members,
	}, nil
}

func (dr *DomainRepository) UpdateDomain(ctx context.Context, id string, name, description *string) (*domain.Domain, error) {
	const op = "internal.repository.postgres.UpdateDomain"

	builder := dr.sq.Update("domains").Where(sq.Eq{"id": id})

	if name != nil {
		builder = builder.Set("name", *name)
	}

	if description != nil {
		builder = builder.Set("description", *description)
	}

	query, args, err := builder.
		Suffix("RETURNING id, name, description").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	var updated domain.Domain

	err = dr.db.QueryRowxContext(ctx, query, args...).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: domain with id '%s'", apperrors.ErrNotFound, id)
		}

		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" && name != nil {
			return nil, &apperrors.DomainAlreadyExistsError{Name: *name}
		}

		return nil, fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	return &updated, nil
}

func (dr *DomainRepository) DeleteDomain(ctx context.Context, tx *sqlx.Tx, id string) error {
	const op = "internal.repository.postgres.DeleteDomain"

	query, args, err := dr.sq.Delete("domains").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute delete: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to read rows affected: %w", op, err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: domain with id '%s'", apperrors.ErrNotFound, id)
	}

	return nil
}

func (dr *DomainRepository) ClearMembers(ctx context.Context, tx *sqlx.Tx, domainID string) ([]string, error) {
	const op = "internal.repository.postgres.ClearMembers"

	query, args, err := dr.sq.Delete("domain_members").
		Where(sq.Eq{"domain_id": domainID}).
		Suffix("RETURNING authority_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build member delete query: %w", op, err)
	}

	var memberIDs []string
	if err := tx.SelectContext(ctx, &memberIDs, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to delete member rows: %w", op, err)
	}

	// Clear the weak reference both for recorded members and for any
	// authority whose drifted ref still points at the deleted domain.
	clearWhere := sq.Sqlizer(sq.Eq{"domain_id": domainID})
	if len(memberIDs) > 0 {
		clearWhere = sq.Or{clearWhere, sq.Eq{"id": memberIDs}}
	}

	query, args, err = dr.sq.Update("authorities").
		Set("domain_id", nil).
		Where(clearWhere).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build ref clear query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to clear domain refs: %w", op, err)
	}

	return memberIDs, nil
}

func (dr *DomainRepository) IsMember(ctx context.Context, ext sqlx.ExtContext, domainID, authorityID string) (bool, error) {
	const op = "internal.repository.postgres.IsMember"

	query, args, err := dr.sq.Select("1").
		From("domain_members").
		Where(sq.Eq{"domain_id": domainID, "authority_id": authorityID}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: failed to build membership query: %w", op, err)
	}

	var isMember bool
	if err := sqlx.GetContext(ctx, ext, &isMember, query, args...); err != nil {
		return false, fmt.Errorf("%s: failed to check membership: %w", op, err)
	}

	return isMember, nil
}
