package service

import (
	"context"

	"github.com/aegis-campus/aegis/internal/domain"
	"github.com/aegis-campus/aegis/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

type DomainRepositoryMock struct {
	mock.Mock
}

var _ repository.DomainRepository = (*DomainRepositoryMock)(nil)

func (m *DomainRepositoryMock) CreateDomain(ctx context.Context, tx *sqlx.Tx, d domain.Domain, firstMemberID string) (*domain.Domain, error) {
	args := m.Called(ctx, tx, d, firstMemberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Domain), args.Error(1)
}

func (m *DomainRepositoryMock) ListDomains(ctx context.Context) ([]domain.DomainWithMembers, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.DomainWithMembers), args.Error(1)
}

func (m *DomainRepositoryMock) GetDomainByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.DomainWithMembers, error) {
	args := m.Called(ctx, ext, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DomainWithMembers), args.Error(1)
}

func (m *DomainRepositoryMock) UpdateDomain(ctx context.Context, id string, name, description *string) (*domain.Domain, error) {
	args := m.Called(ctx, id, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Domain), args.Error(1)
}

func (m *DomainRepositoryMock) DeleteDomain(ctx context.Context, tx *sqlx.Tx, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *DomainRepositoryMock) ClearMembers(ctx context.Context, tx *sqlx.Tx, domainID string) ([]string, error) {
	args := m.Called(ctx, tx, domainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

func (m *DomainRepositoryMock) IsMember(ctx context.Context, ext sqlx.ExtContext, domainID, authorityID string) (bool, error) {
	args := m.Called(ctx, ext, domainID, authorityID)
	return args.Bool(0), args.Error(1)
}

type AuthorityRepositoryMock struct {
	mock.Mock
}

var _ repository.AuthorityRepository = (*AuthorityRepositoryMock)(nil)

func (m *AuthorityRepositoryMock) GetAuthorityByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.Authority, error) {
	args := m.Called(ctx, ext, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Authority), args.Error(1)
}

func (m *AuthorityRepositoryMock) FindMembershipDomainID(ctx context.Context, ext sqlx.ExtContext, authorityID string) (*string, error) {
	args := m.Called(ctx, ext, authorityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*string), args.Error(1)
}

func (m *AuthorityRepositoryMock) SetDomainRef(ctx context.Context, ext sqlx.ExtContext, authorityID string, domainID *string) error {
	args := m.Called(ctx, ext, authorityID, domainID)
	return args.Error(0)
}

func (m *AuthorityRepositoryMock) ListDomainPeers(ctx context.Context, domainID, excludeID string) ([]domain.Authority, error) {
	args := m.Called(ctx, domainID, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Authority), args.Error(1)
}

type ComplaintCommandRepositoryMock struct {
	mock.Mock
}

var _ repository.ComplaintCommandRepository = (*ComplaintCommandRepositoryMock)(nil)

func (m *ComplaintCommandRepositoryMock) CreateComplaint(ctx context.Context, c *domain.Complaint) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *ComplaintCommandRepositoryMock) AcceptIfUnclaimed(ctx context.Context, ext sqlx.ExtContext, complaintID, authorityID string) (bool, error) {
	args := m.Called(ctx, ext, complaintID, authorityID)
	return args.Bool(0), args.Error(1)
}

func (m *ComplaintCommandRepositoryMock) GetComplaintWithLock(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Complaint, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *ComplaintCommandRepositoryMock) SetAcceptedBy(ctx context.Context, tx *sqlx.Tx, complaintID, authorityID string) error {
	args := m.Called(ctx, tx, complaintID, authorityID)
	return args.Error(0)
}

func (m *ComplaintCommandRepositoryMock) UpdateStatus(ctx context.Context, tx *sqlx.Tx, complaintID string, status domain.ComplaintStatus) error {
	args := m.Called(ctx, tx, complaintID, status)
	return args.Error(0)
}

func (m *ComplaintCommandRepositoryMock) AppendComment(ctx context.Context, tx *sqlx.Tx, c *domain.Comment) error {
	args := m.Called(ctx, tx, c)
	return args.Error(0)
}

type ComplaintQueryRepositoryMock struct {
	mock.Mock
}

var _ repository.ComplaintQueryRepository = (*ComplaintQueryRepositoryMock)(nil)

func (m *ComplaintQueryRepositoryMock) GetComplaintByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.Complaint, error) {
	args := m.Called(ctx, ext, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *ComplaintQueryRepositoryMock) GetComplaintWithComments(ctx context.Context, id string) (*domain.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *ComplaintQueryRepositoryMock) ListDomainQueue(ctx context.Context, domainID, authorityID string) ([]domain.Complaint, error) {
	args := m.Called(ctx, domainID, authorityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Complaint), args.Error(1)
}

func (m *ComplaintQueryRepositoryMock) ListAssigned(ctx context.Context, authorityID string) ([]domain.Complaint, error) {
	args := m.Called(ctx, authorityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Complaint), args.Error(1)
}

func (m *ComplaintQueryRepositoryMock) ListByStudent(ctx context.Context, studentID string) ([]domain.Complaint, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Complaint), args.Error(1)
}

func (m *ComplaintQueryRepositoryMock) GetDomainStats(ctx context.Context, domainID string) (*domain.DomainStats, error) {
	args := m.Called(ctx, domainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DomainStats), args.Error(1)
}

func (m *ComplaintQueryRepositoryMock) GetPersonalStats(ctx context.Context, authorityID string) (*domain.PersonalStats, error) {
	args := m.Called(ctx, authorityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.PersonalStats), args.Error(1)
}
