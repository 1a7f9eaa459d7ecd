package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/ledgerbots/cost_of_sales_app/internal/apperrors"
	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	portssvc "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/services"
)

type CostOfSalesServiceTestSuite struct {
	suite.Suite
	books    *MockBookRepository
	records  *MockRecordRepository
	accounts *MockAccountRepository
	tasks    *MockTaskRepository
	rebuild  *MockRebuildSvc
	service  portssvc.CostOfSalesSvc

	inventoryBook domain.Book
	financialBook domain.Book
	account       domain.Account
}

func (s *CostOfSalesServiceTestSuite) SetupTest() {
	s.books = new(MockBookRepository)
	s.records = new(MockRecordRepository)
	s.accounts = new(MockAccountRepository)
	s.tasks = new(MockTaskRepository)
	s.rebuild = new(MockRebuildSvc)
	s.service = NewCostOfSalesService(
		s.books, s.records, s.accounts, s.tasks, s.rebuild,
		WithClock(func() time.Time { return day(10) }),
	)

	s.inventoryBook = domain.Book{BookID: "inv", Name: "Inventory", CollectionID: "col", FractionDigits: 2, IsInventory: true}
	s.financialBook = domain.Book{BookID: "fin", Name: "Financial USD", CollectionID: "col", ExchangeCode: "USD", FractionDigits: 2}
	s.account = domain.Account{
		AccountID:   "acc",
		BookID:      "inv",
		Name:        "Widget",
		AccountType: domain.Asset,
		Groups:      []domain.Group{{GroupID: "g1", Name: "Goods USD", ExchangeCode: "USD"}},
	}
}

func (s *CostOfSalesServiceTestSuite) expectBooksAndAccount() {
	s.books.On("FindBookByID", mock.Anything, "inv").Return(&s.inventoryBook, nil)
	s.accounts.On("FindAccountByID", mock.Anything, "acc").Return(&s.account, nil)
	s.books.On("FindBooksByCollection", mock.Anything, "col").Return([]domain.Book{s.inventoryBook, s.financialBook}, nil)
}

func (s *CostOfSalesServiceTestSuite) expectInventoryRecords(records []domain.Record) {
	s.records.On("QueryRecords", mock.Anything, "inv", mock.MatchedBy(func(q domain.RecordQuery) bool {
		return q.Account == "Widget"
	})).Return(records, nil)
}

func (s *CostOfSalesServiceTestSuite) expectNoCostAdjustments() {
	s.records.On("QueryRecords", mock.Anything, "fin", mock.MatchedBy(func(q domain.RecordQuery) bool {
		return q.PurchaseCode != ""
	})).Return([]domain.Record{}, nil)
}

func (s *CostOfSalesServiceTestSuite) expectCostOfSalePosting() {
	s.records.On("QueryRecords", mock.Anything, "fin", mock.MatchedBy(func(q domain.RecordQuery) bool {
		return q.RemoteID != ""
	})).Return([]domain.Record{}, nil)
	goodFin := domain.Account{AccountID: "fin-widget", BookID: "fin", Name: "Widget", AccountType: domain.Asset}
	costFin := domain.Account{AccountID: "fin-cos", BookID: "fin", Name: "Cost of sales", AccountType: domain.Outgoing}
	s.accounts.On("FindAccountByName", mock.Anything, "fin", "Widget").Return(&goodFin, nil)
	s.accounts.On("FindAccountByName", mock.Anything, "fin", "Cost of sales").Return(&costFin, nil)
}

func (s *CostOfSalesServiceTestSuite) TestWidgetAllocationAcrossTwoPurchases() {
	// Two purchases (10 @ 10.00, 5 @ 12.00), one sale of 12 units. FIFO
	// takes all of the first purchase and 2 units of the second:
	// 100 + 2*12 = 124.
	p1 := purchaseRecord("p1", day(1), "10", "100")
	p2 := purchaseRecord("p2", day(2), "5", "60")
	s1 := saleRecord("s1", day(3), "12")

	s.expectBooksAndAccount()
	s.expectInventoryRecords([]domain.Record{p1, p2, s1})
	s.expectNoCostAdjustments()
	s.expectCostOfSalePosting()

	var updates []domain.Record
	var creates []domain.Record
	s.records.On("UpdateRecord", mock.Anything, mock.AnythingOfType("domain.Record")).
		Run(func(args mock.Arguments) { updates = append(updates, args.Get(1).(domain.Record)) }).
		Return(nil)
	s.records.On("CreateRecord", mock.Anything, mock.AnythingOfType("domain.Record")).
		Run(func(args mock.Arguments) { creates = append(creates, args.Get(1).(domain.Record)) }).
		Return(&domain.Record{RecordID: "created"}, nil)
	s.accounts.On("SetCOGSCalcDate", mock.Anything, "acc", mock.Anything).Return(nil)

	summary, err := s.service.CalculateCostOfSales(context.Background(), "inv", "acc", nil)

	s.Require().NoError(err)
	s.Equal(domain.SummaryInProgress, summary.Result)

	byID := map[string]domain.Record{}
	for _, u := range updates {
		byID[u.RecordID] = u
	}

	// First purchase fully consumed.
	up1 := byID["p1"]
	s.True(up1.Checked)
	s.True(up1.Purchase.TotalCost.Equal(dec("100")))
	s.Require().Len(up1.Purchase.LiquidationLog, 1)
	s.Equal("s1", up1.Purchase.LiquidationLog[0].SaleID)

	// Second purchase split: residual 3 units / 36.
	up2 := byID["p2"]
	s.False(up2.Checked)
	s.True(up2.Amount.Equal(dec("3")))
	s.True(up2.Purchase.TotalCost.Equal(dec("36")))

	// Sale checked with the allocated cost and a two-entry purchase log.
	us1 := byID["s1"]
	s.True(us1.Checked)
	s.True(us1.Sale.TotalCost.Equal(dec("124")))
	s.Require().Len(us1.Sale.PurchaseLog, 2)
	s.True(us1.Sale.PurchaseLog[0].Quantity.Equal(dec("10")))
	s.True(us1.Sale.PurchaseLog[1].Quantity.Equal(dec("2")))

	// Two creates: the split child and the cost-of-sale posting.
	s.Require().Len(creates, 2)
	var splitChild, costPosting *domain.Record
	for i := range creates {
		if creates[i].BookID == "fin" {
			costPosting = &creates[i]
		} else {
			splitChild = &creates[i]
		}
	}
	s.Require().NotNil(splitChild)
	s.True(splitChild.Amount.Equal(dec("2")))
	s.True(splitChild.Purchase.TotalCost.Equal(dec("24")))
	s.Equal("p2", splitChild.Purchase.ParentID)
	s.True(splitChild.Checked)

	s.Require().NotNil(costPosting)
	s.True(costPosting.Amount.Equal(dec("124")))
	s.Equal([]string{"s1"}, costPosting.RemoteIDs)
	s.Equal("Widget", costPosting.Credit.Name)
	s.Equal("Cost of sales", costPosting.Debit.Name)
}

func (s *CostOfSalesServiceTestSuite) TestNoUncheckedSalesReturnsOK() {
	p1 := purchaseRecord("p1", day(1), "10", "100")
	done := saleRecord("s0", day(2), "3")
	done.Checked = true

	s.expectBooksAndAccount()
	s.expectInventoryRecords([]domain.Record{p1, done})

	summary, err := s.service.CalculateCostOfSales(context.Background(), "inv", "acc", nil)

	s.Require().NoError(err)
	s.Equal(domain.SummaryOK, summary.Result)
	s.records.AssertNotCalled(s.T(), "UpdateRecord", mock.Anything, mock.Anything)
	s.records.AssertNotCalled(s.T(), "CreateRecord", mock.Anything, mock.Anything)
}

func (s *CostOfSalesServiceTestSuite) TestQuantityErrorLeavesEverythingUntouched() {
	p1 := purchaseRecord("p1", day(1), "10", "100")
	oversold := saleRecord("s1", day(3), "11")

	s.expectBooksAndAccount()
	s.expectInventoryRecords([]domain.Record{p1, oversold})

	summary, err := s.service.CalculateCostOfSales(context.Background(), "inv", "acc", nil)

	s.Require().NoError(err)
	s.Equal(domain.SummaryQuantityError, summary.Result)
	s.records.AssertNotCalled(s.T(), "UpdateRecord", mock.Anything, mock.Anything)
	s.records.AssertNotCalled(s.T(), "CreateRecord", mock.Anything, mock.Anything)
	s.accounts.AssertNotCalled(s.T(), "SetCOGSCalcDate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CostOfSalesServiceTestSuite) TestLockedPurchaseAbortsRun() {
	p1 := purchaseRecord("p1", day(1), "10", "100")
	p1.Locked = true
	s1 := saleRecord("s1", day(3), "5")

	s.expectBooksAndAccount()
	s.expectInventoryRecords([]domain.Record{p1, s1})

	summary, err := s.service.CalculateCostOfSales(context.Background(), "inv", "acc", nil)

	s.Require().NoError(err)
	s.Equal(domain.SummaryLockError, summary.Result)
	s.records.AssertNotCalled(s.T(), "UpdateRecord", mock.Anything, mock.Anything)
	s.records.AssertNotCalled(s.T(), "CreateRecord", mock.Anything, mock.Anything)
}

func (s *CostOfSalesServiceTestSuite) TestRebuildFlagShortCircuits() {
	s.account.NeedsRebuild = true
	s.books.On("FindBookByID", mock.Anything, "inv").Return(&s.inventoryBook, nil)
	s.accounts.On("FindAccountByID", mock.Anything, "acc").Return(&s.account, nil)
	s.rebuild.On("EnqueueRebuild", mock.Anything, "inv", "acc").Return(domain.Task{TaskID: "t1"}, nil).Once()

	summary, err := s.service.CalculateCostOfSales(context.Background(), "inv", "acc", nil)

	s.Require().NoError(err)
	s.Equal(domain.SummaryRebuildInProgress, summary.Result)
	s.rebuild.AssertExpectations(s.T())
	s.records.AssertNotCalled(s.T(), "QueryRecords", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CostOfSalesServiceTestSuite) TestMissingFinancialBookSkips() {
	s.books.On("FindBookByID", mock.Anything, "inv").Return(&s.inventoryBook, nil)
	s.accounts.On("FindAccountByID", mock.Anything, "acc").Return(&s.account, nil)
	// Collection only holds the inventory book itself.
	s.books.On("FindBooksByCollection", mock.Anything, "col").Return([]domain.Book{s.inventoryBook}, nil)

	summary, err := s.service.CalculateCostOfSales(context.Background(), "inv", "acc", nil)

	s.Require().NoError(err)
	s.Equal(domain.SummarySkipped, summary.Result)
}

func (s *CostOfSalesServiceTestSuite) TestAdditionalCostsRaiseUnitCost() {
	// Purchase of 10 for 100 plus a 20 freight entry on the financial
	// book: effective cost 120, so selling all 10 costs 120.
	p1 := purchaseRecord("p1", day(1), "10", "100")
	s1 := saleRecord("s1", day(3), "10")

	s.expectBooksAndAccount()
	s.expectInventoryRecords([]domain.Record{p1, s1})

	freightAmount := dec("20")
	freight := domain.Record{
		RecordID: "f1",
		Date:     day(2),
		Amount:   freightAmount,
		Credit:   domain.AccountRef{Name: "Supplier", AccountType: domain.Liability},
		Debit:    domain.AccountRef{Name: "Widget", AccountType: domain.Asset},
		Financial: &domain.FinancialProps{
			PurchaseCode:   "p1",
			AdditionalCost: &freightAmount,
		},
	}
	s.records.On("QueryRecords", mock.Anything, "fin", mock.MatchedBy(func(q domain.RecordQuery) bool {
		return q.PurchaseCode == "p1"
	})).Return([]domain.Record{freight}, nil)
	s.expectCostOfSalePosting()

	var updates []domain.Record
	s.records.On("UpdateRecord", mock.Anything, mock.AnythingOfType("domain.Record")).
		Run(func(args mock.Arguments) { updates = append(updates, args.Get(1).(domain.Record)) }).
		Return(nil)
	s.records.On("CreateRecord", mock.Anything, mock.AnythingOfType("domain.Record")).
		Return(&domain.Record{RecordID: "created"}, nil)
	s.accounts.On("SetCOGSCalcDate", mock.Anything, "acc", mock.Anything).Return(nil)

	summary, err := s.service.CalculateCostOfSales(context.Background(), "inv", "acc", nil)

	s.Require().NoError(err)
	s.Equal(domain.SummaryInProgress, summary.Result)

	for _, u := range updates {
		if u.RecordID == "s1" {
			s.True(u.Sale.TotalCost.Equal(dec("120")), "expected 120, got %s", u.Sale.TotalCost)
		}
		if u.RecordID == "p1" {
			s.Require().NotNil(u.Purchase.AdditionalCosts)
			s.True(u.Purchase.AdditionalCosts.Equal(dec("20")))
		}
	}
}

func (s *CostOfSalesServiceTestSuite) TestAccountProvisioningSurfacesRemoteErrors() {
	// The financial good account is missing and the inventory-side lookup
	// for its groups fails transiently: the run must fail rather than
	// create the account with no groups.
	p1 := purchaseRecord("p1", day(1), "10", "100")
	s1 := saleRecord("s1", day(3), "5")

	s.expectBooksAndAccount()
	s.expectInventoryRecords([]domain.Record{p1, s1})
	s.expectNoCostAdjustments()
	s.records.On("QueryRecords", mock.Anything, "fin", mock.MatchedBy(func(q domain.RecordQuery) bool {
		return q.RemoteID != ""
	})).Return([]domain.Record{}, nil)

	s.accounts.On("FindAccountByName", mock.Anything, "fin", "Widget").
		Return(nil, apperrors.ErrNotFound)
	s.accounts.On("FindAccountByName", mock.Anything, "inv", "Widget").
		Return(nil, errors.New("store timeout"))

	_, err := s.service.CalculateCostOfSales(context.Background(), "inv", "acc", nil)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrRemote)
	s.accounts.AssertNotCalled(s.T(), "SaveAccount", mock.Anything, mock.Anything)
	s.records.AssertNotCalled(s.T(), "CreateRecord", mock.Anything, mock.Anything)
}

func (s *CostOfSalesServiceTestSuite) TestValidateFailsWithPendingTasks() {
	s.books.On("FindBookByID", mock.Anything, "inv").Return(&s.inventoryBook, nil)
	s.tasks.On("CountPendingTasks", mock.Anything, "inv").Return(2, nil)

	err := s.service.Validate(context.Background(), "inv")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *CostOfSalesServiceTestSuite) TestValidatePassesWhenIdle() {
	s.books.On("FindBookByID", mock.Anything, "inv").Return(&s.inventoryBook, nil)
	s.tasks.On("CountPendingTasks", mock.Anything, "inv").Return(0, nil)

	s.Require().NoError(s.service.Validate(context.Background(), "inv"))
}

func TestCostOfSalesServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CostOfSalesServiceTestSuite))
}
