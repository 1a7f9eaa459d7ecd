package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
)

// MockBookRepository is a mock type for the BookRepository interface
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) FindBookByID(ctx context.Context, bookID string) (*domain.Book, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockBookRepository) FindBooksByCollection(ctx context.Context, collectionID string) ([]domain.Book, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Book), args.Error(1)
}

// MockRecordRepository is a mock type for the RecordRepository interface
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) QueryRecords(ctx context.Context, bookID string, query domain.RecordQuery) ([]domain.Record, error) {
	args := m.Called(ctx, bookID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockRecordRepository) CreateRecord(ctx context.Context, record domain.Record) (*domain.Record, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRecordRepository) UpdateRecord(ctx context.Context, record domain.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) TrashRecord(ctx context.Context, recordID string) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

// MockAccountRepository is a mock type for the AccountRepository interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByName(ctx context.Context, bookID string, name string) (*domain.Account, error) {
	args := m.Called(ctx, bookID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveGroup(ctx context.Context, group domain.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockAccountRepository) SetNeedsRebuild(ctx context.Context, accountID string, needsRebuild bool) error {
	args := m.Called(ctx, accountID, needsRebuild)
	return args.Error(0)
}

func (m *MockAccountRepository) SetCOGSCalcDate(ctx context.Context, accountID string, calcDate *time.Time) error {
	args := m.Called(ctx, accountID, calcDate)
	return args.Error(0)
}

// MockTaskRepository is a mock type for the TaskRepository interface
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) CountPendingTasks(ctx context.Context, bookID string) (int, error) {
	args := m.Called(ctx, bookID)
	return args.Int(0), args.Error(1)
}

func (m *MockTaskRepository) SaveTask(ctx context.Context, task domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) UpdateTaskStatus(ctx context.Context, taskID string, status domain.TaskStatus, taskErr string) error {
	args := m.Called(ctx, taskID, status, taskErr)
	return args.Error(0)
}

// MockRebuildSvc is a mock type for the RebuildSvc interface
type MockRebuildSvc struct {
	mock.Mock
}

func (m *MockRebuildSvc) FlagForRebuild(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockRebuildSvc) EnqueueRebuild(ctx context.Context, bookID string, accountID string) (domain.Task, error) {
	args := m.Called(ctx, bookID, accountID)
	return args.Get(0).(domain.Task), args.Error(1)
}

// MockCostOfSalesSvc is a mock type for the CostOfSalesSvc interface
type MockCostOfSalesSvc struct {
	mock.Mock
}

func (m *MockCostOfSalesSvc) CalculateCostOfSales(ctx context.Context, bookID string, accountID string, toDate *time.Time) (domain.Summary, error) {
	args := m.Called(ctx, bookID, accountID, toDate)
	return args.Get(0).(domain.Summary), args.Error(1)
}

func (m *MockCostOfSalesSvc) Validate(ctx context.Context, bookID string) error {
	args := m.Called(ctx, bookID)
	return args.Error(0)
}
