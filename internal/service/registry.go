package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aegis-campus/aegis/internal/apperrors"
	"github.com/aegis-campus/aegis/internal/auth"
	"github.com/aegis-campus/aegis/internal/domain"
	"github.com/aegis-campus/aegis/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RegistryService manages the domain registry: which domains exist and which
// authorities belong to them.
type RegistryService interface {
	CreateDomain(ctx context.Context, caller auth.Principal, name, description string) (*domain.DomainWithMembers, error)
	ListDomains(ctx context.Context) ([]domain.DomainWithMembers, error)
	GetMyDomain(ctx context.Context, authorityID string) (*domain.DomainWithMembers, error)
	UpdateDomain(ctx context.Context, callerID, domainID string, name, description *string) (*domain.DomainWithMembers, error)
	DeleteDomain(ctx context.Context, callerID, domainID string) error
	RepairDomainRef(ctx context.Context, authorityID string) (*domain.Authority, error)
	ListColleagues(ctx context.Context, authorityID string) ([]domain.Authority, error)
}

type RegistryServiceImpl struct {
	BaseService
	sqlDB       *sqlx.DB
	domains     repository.DomainRepository
	authorities repository.AuthorityRepository
}

func NewRegistryService(
	db *sqlx.DB,
	log *slog.Logger,
	domains repository.DomainRepository,
	authorities repository.AuthorityRepository,
) *RegistryServiceImpl {
	return &RegistryServiceImpl{
		BaseService: NewBaseService(db, log),
		sqlDB:       db,
		domains:     domains,
		authorities: authorities,
	}
}

// CreateDomain creates a domain with the caller as sole member. An admin
// caller creates an empty domain instead of joining it.
func (s *RegistryServiceImpl) CreateDomain(ctx context.Context, caller auth.Principal, name, description string) (*domain.DomainWithMembers, error) {
	const op = "internal.service.registry.CreateDomain"
	log := s.log.With(slog.String("op", op), slog.String("domain_name", name), slog.String("caller_id", caller.ID))

	firstMemberID := ""
	if caller.Role == auth.RoleAuthority {
		firstMemberID = caller.ID
	}

	var result *domain.DomainWithMembers

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		created, err := s.domains.CreateDomain(ctx, tx, domain.Domain{
			ID:          uuid.NewString(),
			Name:        name,
			Description: description,
		}, firstMemberID)
		if err != nil {
			return err
		}

		result, err = s.domains.GetDomainByID(ctx, tx, created.ID)
		if err != nil {
			return fmt.Errorf("%s: failed to reload created domain: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("domain created", slog.String("domain_id", result.ID))

	return result, nil
}

func (s *RegistryServiceImpl) ListDomains(ctx context.Context) ([]domain.DomainWithMembers, error) {
	const op = "internal.service.registry.ListDomains"

	domains, err := s.domains.ListDomains(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list domains: %w", op, err)
	}

	return domains, nil
}

func (s *RegistryServiceImpl) GetMyDomain(ctx context.Context, authorityID string) (*domain.DomainWithMembers, error) {
	const op = "internal.service.registry.GetMyDomain"

	domainID, err := resolveDomainID(ctx, s.sqlDB, s.authorities, authorityID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve domain: %w", op, err)
	}

	if domainID == nil {
		return nil, apperrors.ErrNoDomain
	}

	d, err := s.domains.GetDomainByID(ctx, s.sqlDB, *domainID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get domain: %w", op, err)
	}

	return d, nil
}

// UpdateDomain applies a partial update: nil fields stay untouched. Only a
// member of the domain may update it.
func (s *RegistryServiceImpl) UpdateDomain(ctx context.Context, callerID, domainID string, name, description *string) (*domain.DomainWithMembers, error) {
	const op = "internal.service.registry.UpdateDomain"
	log := s.log.With(slog.String("op", op), slog.String("domain_id", domainID))

	if _, err := s.domains.GetDomainByID(ctx, s.sqlDB, domainID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	isMember, err := s.domains.IsMember(ctx, s.sqlDB, domainID, callerID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to check membership: %w", op, err)
	}

	if !isMember {
		return nil, fmt.Errorf("%w: authority '%s' is not a member of domain '%s'", apperrors.ErrForbidden, callerID, domainID)
	}

	if name != nil || description != nil {
		if _, err := s.domains.UpdateDomain(ctx, domainID, name, description); err != nil {
			return nil, err
		}

		log.Info("domain updated")
	}

	d, err := s.domains.GetDomainByID(ctx, s.sqlDB, domainID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to reload domain: %w", op, err)
	}

	return d, nil
}

// DeleteDomain removes the domain and clears the domain reference on every
// member authority. Complaints keep their domain reference.
func (s *RegistryServiceImpl) DeleteDomain(ctx context.Context, callerID, domainID string) error {
	const op = "internal.service.registry.DeleteDomain"
	log := s.log.With(slog.String("op", op), slog.String("domain_id", domainID))

	return s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		if _, err := s.domains.GetDomainByID(ctx, tx, domainID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		isMember, err := s.domains.IsMember(ctx, tx, domainID, callerID)
		if err != nil {
			return fmt.Errorf("%s: failed to check membership: %w", op, err)
		}

		if !isMember {
			return fmt.Errorf("%w: authority '%s' is not a member of domain '%s'", apperrors.ErrForbidden, callerID, domainID)
		}

		clearedIDs, err := s.domains.ClearMembers(ctx, tx, domainID)
		if err != nil {
			return err
		}

		if err := s.domains.DeleteDomain(ctx, tx, domainID); err != nil {
			return err
		}

		log.Info("domain deleted", slog.Int("members_cleared", len(clearedIDs)))

		return nil
	})
}

// RepairDomainRef persists the reconciled weak domain reference for an
// authority. It is idempotent: when the record already agrees with the
// member set, nothing is written.
func (s *RegistryServiceImpl) RepairDomainRef(ctx context.Context, authorityID string) (*domain.Authority, error) {
	const op = "internal.service.registry.RepairDomainRef"
	log := s.log.With(slog.String("op", op), slog.String("authority_id", authorityID))

	a, err := s.authorities.GetAuthorityByID(ctx, s.sqlDB, authorityID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	membershipID, err := s.authorities.FindMembershipDomainID(ctx, s.sqlDB, authorityID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve membership: %w", op, err)
	}

	if equalRef(a.DomainID, membershipID) {
		return a, nil
	}

	if err := s.authorities.SetDomainRef(ctx, s.sqlDB, authorityID, membershipID); err != nil {
		return nil, fmt.Errorf("%s: failed to persist domain ref: %w", op, err)
	}

	log.Info("domain ref repaired")

	a.DomainID = membershipID

	return a, nil
}

func (s *RegistryServiceImpl) ListColleagues(ctx context.Context, authorityID string) ([]domain.Authority, error) {
	const op = "internal.service.registry.ListColleagues"

	domainID, err := resolveDomainID(ctx, s.sqlDB, s.authorities, authorityID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve domain: %w", op, err)
	}

	if domainID == nil {
		return nil, apperrors.ErrNoDomain
	}

	peers, err := s.authorities.ListDomainPeers(ctx, *domainID, authorityID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list peers: %w", op, err)
	}

	return peers, nil
}

func equalRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
