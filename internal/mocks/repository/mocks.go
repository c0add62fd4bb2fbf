// Package repository provides testify mocks for the domain repository interfaces.
package repository

import (
	"context"

	"academy/internal/domain/entity"
	"academy/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock for repository.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *entity.Account) error {
	args := m.Called(ctx, account)

	return args.Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *entity.Account) error {
	args := m.Called(ctx, account)

	return args.Error(0)
}

// MockCredentialRepository is a mock for repository.CredentialRepository.
type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) FindByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Credential), args.Error(1)
}

func (m *MockCredentialRepository) Create(ctx context.Context, credential *entity.Credential) error {
	args := m.Called(ctx, credential)

	return args.Error(0)
}

func (m *MockCredentialRepository) Update(ctx context.Context, credential *entity.Credential) error {
	args := m.Called(ctx, credential)

	return args.Error(0)
}

// MockProfileRepository is a mock for repository.ProfileRepository.
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.Profile, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Profile), args.Error(1)
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	args := m.Called(ctx, profile)

	return args.Error(0)
}

func (m *MockProfileRepository) Apply(ctx context.Context, accountID uuid.UUID, patch entity.ProfilePatch) error {
	args := m.Called(ctx, accountID, patch)

	return args.Error(0)
}

// MockSessionRepository is a mock for repository.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	args := m.Called(ctx, token)

	return args.Error(0)
}

func (m *MockSessionRepository) FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.RefreshToken), args.Error(1)
}

func (m *MockSessionRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)

	return args.Error(0)
}

func (m *MockSessionRepository) DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error {
	args := m.Called(ctx, accountID)

	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockCourseRepository is a mock for repository.CourseRepository.
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) List(ctx context.Context) ([]*entity.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Course), args.Error(1)
}

func (m *MockCourseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Course), args.Error(1)
}

// MockTransactionManager is a mock for repository.TransactionManager.
// Execute runs the callback against a MockRepositoryFactory so tests can
// verify what happens inside the transaction.
type MockTransactionManager struct {
	mock.Mock

	Factory *MockRepositoryFactory
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{
		Factory: &MockRepositoryFactory{
			AccountRepository:    new(MockAccountRepository),
			CredentialRepository: new(MockCredentialRepository),
			ProfileRepository:    new(MockProfileRepository),
			SessionRepository:    new(MockSessionRepository),
		},
	}
}

func (m *MockTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}

	return fn(m.Factory)
}

// MockRepositoryFactory is a mock for repository.RepositoryFactory.
type MockRepositoryFactory struct {
	AccountRepository    *MockAccountRepository
	CredentialRepository *MockCredentialRepository
	ProfileRepository    *MockProfileRepository
	SessionRepository    *MockSessionRepository
}

func (f *MockRepositoryFactory) AccountRepo() repository.AccountRepository {
	return f.AccountRepository
}

func (f *MockRepositoryFactory) CredentialRepo() repository.CredentialRepository {
	return f.CredentialRepository
}

func (f *MockRepositoryFactory) ProfileRepo() repository.ProfileRepository {
	return f.ProfileRepository
}

func (f *MockRepositoryFactory) SessionRepo() repository.SessionRepository {
	return f.SessionRepository
}
