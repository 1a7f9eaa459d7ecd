package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
)

type RebuildServiceTestSuite struct {
	suite.Suite
	books    *MockBookRepository
	records  *MockRecordRepository
	accounts *MockAccountRepository
	tasks    *MockTaskRepository
	calc     *MockCostOfSalesSvc
	service  *rebuildService
}

func (s *RebuildServiceTestSuite) SetupTest() {
	s.books = new(MockBookRepository)
	s.records = new(MockRecordRepository)
	s.accounts = new(MockAccountRepository)
	s.tasks = new(MockTaskRepository)
	s.calc = new(MockCostOfSalesSvc)
	s.service = NewRebuildService(s.books, s.records, s.accounts, s.tasks)
	s.service.SetCalculator(s.calc)
}

func (s *RebuildServiceTestSuite) TestFlagForRebuildSetsAccountFlag() {
	s.accounts.On("SetNeedsRebuild", mock.Anything, "acc", true).Return(nil).Once()

	s.Require().NoError(s.service.FlagForRebuild(context.Background(), "acc"))
	s.accounts.AssertExpectations(s.T())
}

func (s *RebuildServiceTestSuite) TestEnqueueRebuildPersistsPendingTask() {
	var saved domain.Task
	s.tasks.On("SaveTask", mock.Anything, mock.AnythingOfType("domain.Task")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Task) }).
		Return(nil).Once()

	task, err := s.service.EnqueueRebuild(context.Background(), "inv", "acc")

	s.Require().NoError(err)
	s.NotEmpty(task.TaskID)
	s.Equal(domain.TaskPending, saved.Status)
	s.Equal(domain.TaskRebuild, saved.Kind)
	s.Equal("inv", saved.BookID)
	s.Equal("acc", saved.AccountID)
}

func (s *RebuildServiceTestSuite) TestWorkerResetsHistoryAndRecalculates() {
	inv := domain.Book{BookID: "inv", CollectionID: "col", FractionDigits: 2, IsInventory: true}
	fin := domain.Book{BookID: "fin", CollectionID: "col", ExchangeCode: "USD"}
	account := domain.Account{
		AccountID:   "acc",
		BookID:      "inv",
		Name:        "Widget",
		AccountType: domain.Asset,
		Groups:      []domain.Group{{GroupID: "g1", Name: "Goods USD", ExchangeCode: "USD"}},
	}

	// History after a previous run: a consumed root purchase, a split
	// child, and a checked sale.
	root := purchaseRecord("p1", day(1), "3", "36")
	root.Checked = false
	root.Purchase.OriginalQuantity = dec("5")
	root.Purchase.PurchaseCost = dec("60")
	root.Purchase.AdditionalCosts = decPtr("5")

	child := purchaseRecord("p1-split", day(1), "2", "24")
	child.Checked = true
	child.Purchase.ParentID = "p1"

	sale := saleRecord("s1", day(3), "2")
	sale.Checked = true
	sale.Sale.TotalCost = dec("24")
	sale.Sale.PurchaseLog = []domain.PurchaseLogEntry{{PurchaseID: "p1", Quantity: dec("2"), UnitCost: dec("12")}}

	s.books.On("FindBookByID", mock.Anything, "inv").Return(&inv, nil)
	s.accounts.On("FindAccountByID", mock.Anything, "acc").Return(&account, nil)
	s.records.On("QueryRecords", mock.Anything, "inv", mock.MatchedBy(func(q domain.RecordQuery) bool {
		return q.Account == "Widget"
	})).Return([]domain.Record{root, child, sale}, nil)

	// Root purchase restored to its as-created terms.
	s.records.On("UpdateRecord", mock.Anything, mock.MatchedBy(func(r domain.Record) bool {
		return r.RecordID == "p1" &&
			r.Amount.Equal(dec("5")) &&
			!r.Checked &&
			r.Purchase.TotalCost.Equal(dec("60")) &&
			r.Purchase.AdditionalCosts == nil &&
			r.Purchase.LiquidationLog == nil
	})).Return(nil).Once()
	// Split child removed.
	s.records.On("TrashRecord", mock.Anything, "p1-split").Return(nil).Once()
	// Sale cleared.
	s.records.On("UpdateRecord", mock.Anything, mock.MatchedBy(func(r domain.Record) bool {
		return r.RecordID == "s1" && !r.Checked && r.Sale.TotalCost.IsZero() && r.Sale.PurchaseLog == nil
	})).Return(nil).Once()

	// Cost-of-sale posting for the sale trashed in the financial book.
	s.books.On("FindBooksByCollection", mock.Anything, "col").Return([]domain.Book{inv, fin}, nil)
	posting := domain.Record{RecordID: "cos-1", BookID: "fin", RemoteIDs: []string{"s1"}}
	s.records.On("QueryRecords", mock.Anything, "fin", mock.MatchedBy(func(q domain.RecordQuery) bool {
		return q.RemoteID == "s1"
	})).Return([]domain.Record{posting}, nil)
	s.records.On("TrashRecord", mock.Anything, "cos-1").Return(nil).Once()

	s.accounts.On("SetCOGSCalcDate", mock.Anything, "acc", (*time.Time)(nil)).Return(nil).Once()
	s.accounts.On("SetNeedsRebuild", mock.Anything, "acc", false).Return(nil).Once()

	s.calc.On("CalculateCostOfSales", mock.Anything, "inv", "acc", (*time.Time)(nil)).
		Return(domain.NewSummary("inv", "acc").CalculatingAsync(), nil).Once()

	s.Require().NoError(s.service.rebuildAccount(context.Background(), "inv", "acc"))
	s.records.AssertExpectations(s.T())
	s.accounts.AssertExpectations(s.T())
	s.calc.AssertExpectations(s.T())
}

func (s *RebuildServiceTestSuite) TestWorkerProcessesQueuedTask() {
	inv := domain.Book{BookID: "inv", FractionDigits: 2, IsInventory: true}
	account := domain.Account{AccountID: "acc", BookID: "inv", Name: "Widget", AccountType: domain.Asset}

	s.books.On("FindBookByID", mock.Anything, "inv").Return(&inv, nil)
	s.accounts.On("FindAccountByID", mock.Anything, "acc").Return(&account, nil)
	s.records.On("QueryRecords", mock.Anything, "inv", mock.Anything).Return([]domain.Record{}, nil)
	s.accounts.On("SetCOGSCalcDate", mock.Anything, "acc", (*time.Time)(nil)).Return(nil)
	s.accounts.On("SetNeedsRebuild", mock.Anything, "acc", false).Return(nil)
	s.calc.On("CalculateCostOfSales", mock.Anything, "inv", "acc", (*time.Time)(nil)).
		Return(domain.NewSummary("inv", "acc"), nil)

	s.tasks.On("SaveTask", mock.Anything, mock.Anything).Return(nil)
	s.tasks.On("UpdateTaskStatus", mock.Anything, mock.Anything, domain.TaskRunning, "").Return(nil)

	done := make(chan struct{})
	s.tasks.On("UpdateTaskStatus", mock.Anything, mock.Anything, domain.TaskDone, "").
		Run(func(mock.Arguments) { close(done) }).
		Return(nil)

	s.service.Start()
	defer s.service.Stop()

	_, err := s.service.EnqueueRebuild(context.Background(), "inv", "acc")
	s.Require().NoError(err)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.FailNow("rebuild task did not finish")
	}
	s.calc.AssertExpectations(s.T())
}

func (s *RebuildServiceTestSuite) TestWorkerMarksTaskFailed() {
	s.books.On("FindBookByID", mock.Anything, "inv").Return(nil, errors.New("store unavailable"))
	s.tasks.On("UpdateTaskStatus", mock.Anything, "t1", domain.TaskRunning, "").Return(nil).Once()
	s.tasks.On("UpdateTaskStatus", mock.Anything, "t1", domain.TaskFailed, mock.AnythingOfType("string")).Return(nil).Once()

	s.service.execute(domain.Task{TaskID: "t1", BookID: "inv", AccountID: "acc"})
	s.tasks.AssertExpectations(s.T())
}

func TestRebuildServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RebuildServiceTestSuite))
}
