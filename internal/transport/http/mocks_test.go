package http

import (
	"context"

	"github.com/aegis-campus/aegis/internal/auth"
	"github.com/aegis-campus/aegis/internal/domain"
	"github.com/aegis-campus/aegis/internal/service"
	"github.com/stretchr/testify/mock"
)

type TokenValidatorMock struct {
	mock.Mock
}

var _ TokenValidator = (*TokenValidatorMock)(nil)

func (m *TokenValidatorMock) ValidateToken(tokenString string) (*auth.Principal, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*auth.Principal), args.Error(1)
}

type RegistryServiceMock struct {
	mock.Mock
}

var _ service.RegistryService = (*RegistryServiceMock)(nil)

func (m *RegistryServiceMock) CreateDomain(ctx context.Context, caller auth.Principal, name, description string) (*domain.DomainWithMembers, error) {
	args := m.Called(ctx, caller, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DomainWithMembers), args.Error(1)
}

func (m *RegistryServiceMock) ListDomains(ctx context.Context) ([]domain.DomainWithMembers, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.DomainWithMembers), args.Error(1)
}

func (m *RegistryServiceMock) GetMyDomain(ctx context.Context, authorityID string) (*domain.DomainWithMembers, error) {
	args := m.Called(ctx, authorityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DomainWithMembers), args.Error(1)
}

func (m *RegistryServiceMock) UpdateDomain(ctx context.Context, callerID, domainID string, name, description *string) (*domain.DomainWithMembers, error) {
	args := m.Called(ctx, callerID, domainID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DomainWithMembers), args.Error(1)
}

func (m *RegistryServiceMock) DeleteDomain(ctx context.Context, callerID, domainID string) error {
	args := m.Called(ctx, callerID, domainID)
	return args.Error(0)
}

func (m *RegistryServiceMock) RepairDomainRef(ctx context.Context, authorityID string) (*domain.Authority, error) {
	args := m.Called(ctx, authorityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Authority), args.Error(1)
}

func (m *RegistryServiceMock) ListColleagues(ctx context.Context, authorityID string) ([]domain.Authority, error) {
	args := m.Called(ctx, authorityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Authority), args.Error(1)
}

type WorkflowServiceMock struct {
	mock.Mock
}

var _ service.WorkflowService = (*WorkflowServiceMock)(nil)

func (m *WorkflowServiceMock) CreateComplaint(ctx context.Context, studentID, title, description, domainID string, priority domain.ComplaintPriority) (*domain.Complaint, error) {
	args := m.Called(ctx, studentID, title, description, domainID, priority)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *WorkflowServiceMock) ListStudentComplaints(ctx context.Context, studentID string) ([]domain.Complaint, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Complaint), args.Error(1)
}

func (m *WorkflowServiceMock) ListQueue(ctx context.Context, authorityID string) ([]domain.Complaint, error) {
	args := m.Called(ctx, authorityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Complaint), args.Error(1)
}

func (m *WorkflowServiceMock) ListAssigned(ctx context.Context, authorityID string) ([]domain.Complaint, error) {
	args := m.Called(ctx, authorityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Complaint), args.Error(1)
}

func (m *WorkflowServiceMock) Accept(ctx context.Context, authorityID, complaintID string) (*domain.Complaint, error) {
	args := m.Called(ctx, authorityID, complaintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *WorkflowServiceMock) Transfer(ctx context.Context, authorityID, complaintID, targetID string) (*domain.Complaint, error) {
	args := m.Called(ctx, authorityID, complaintID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *WorkflowServiceMock) UpdateStatus(ctx context.Context, authorityID, complaintID string, status domain.ComplaintStatus, comment string) (*domain.Complaint, error) {
	args := m.Called(ctx, authorityID, complaintID, status, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *WorkflowServiceMock) Stats(ctx context.Context, authorityID string) (*domain.DomainStats, *domain.PersonalStats, error) {
	args := m.Called(ctx, authorityID)

	var ds *domain.DomainStats
	if args.Get(0) != nil {
		ds = args.Get(0).(*domain.DomainStats)
	}

	var ps *domain.PersonalStats
	if args.Get(1) != nil {
		ps = args.Get(1).(*domain.PersonalStats)
	}

	return ds, ps, args.Error(2)
}
