package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aegis-campus/aegis/internal/repository"
	"github.com/aegis-campus/aegis/pkg/logger/sl"
	"github.com/jmoiron/sqlx"
)

type Transactor interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type BaseService struct {
	db  Transactor
	log *slog.Logger
}

func NewBaseService(db Transactor, log *slog.Logger) BaseService {
	return BaseService{
		db:  db,
		log: log,
	}
}

func (s *BaseService) transaction(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.log.Error("failed to rollback transaction", sl.Err(err))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return nil
}

// resolveDomainID returns the authority's effective domain. The weak
// reference on the authority record wins when present; otherwise the
// domain_members set is consulted, so a drifted record still resolves
// correctly. Nothing is written here: persistence of the repaired reference
// happens only through the explicit repair path.
func resolveDomainID(ctx context.Context, ext sqlx.ExtContext, authorities repository.AuthorityRepository, authorityID string) (*string, error) {
	a, err := authorities.GetAuthorityByID(ctx, ext, authorityID)
	if err != nil {
		return nil, err
	}

	if a.DomainID != nil {
		return a.DomainID, nil
	}

	return authorities.FindMembershipDomainID(ctx, ext, authorityID)
}
