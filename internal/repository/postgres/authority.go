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
)

type AuthorityRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewAuthorityRepository(db *sqlx.DB, log *slog.Logger) *AuthorityRepository {
	return &AuthorityRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (ar *AuthorityRepository) GetAuthorityByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.Authority, error) {
	const op = "internal.repository.postgres.GetAuthorityByID"

	query, args, err := ar.sq.Select("id", "name", "email", "domain_id").
		From("authorities").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var a domain.Authority
	if err := sqlx.GetContext(ctx, ext, &a, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: authority with id '%s'", apperrors.ErrNotFound, id)
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &a, nil
}

func (ar *AuthorityRepository) FindMembershipDomainID(ctx context.Context, ext sqlx.ExtContext, authorityID string) (*string, error) {
	const op = "internal.repository.postgres.FindMembershipDomainID"

	query, args, err := ar.sq.Select("domain_id").
		From("domain_members").
		Where(sq.Eq{"authority_id": authorityID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var domainID string
	if err := sqlx.GetContext(ctx, ext, &domainID, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &domainID, nil
}

func (ar *AuthorityRepository) SetDomainRef(ctx context.Context, ext sqlx.ExtContext, authorityID string, domainID *string) error {
	const op = "internal.repository.postgres.SetDomainRef"

	query, args, err := ar.sq.Update("authorities").
		Set("domain_id", domainID).
		Where(sq.Eq{"id": authorityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to read rows affected: %w", op, err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: authority with id '%s'", apperrors.ErrNotFound, authorityID)
	}

	return nil
}

func (ar *AuthorityRepository) ListDomainPeers(ctx context.Context, domainID, excludeID string) ([]domain.Authority, error) {
	const op = "internal.repository.postgres.ListDomainPeers"

	query, args, err := ar.sq.Select("a.id", "a.name", "a.email", "a.domain_id").
		From("domain_members dm").
		Join("authorities a ON a.id = dm.authority_id").
		Where(sq.And{
			sq.Eq{"dm.domain_id": domainID},
			sq.NotEq{"a.id": excludeID},
		}).
		OrderBy("a.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var peers []domain.Authority
	if err := ar.db.SelectContext(ctx, &peers, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return peers, nil
}
