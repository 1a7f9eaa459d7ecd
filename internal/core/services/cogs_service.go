package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbots/cost_of_sales_app/internal/apperrors"
	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	portsrepo "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/repositories"
	portssvc "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/services"
)

// costOfSalesAccountName is the financial-book account that cost-of-sale
// records debit.
const costOfSalesAccountName = "Cost of sales"

// costOfSalesService implements the FIFO matching run end to end: record
// selection, ordering, allocation, batch commit and calc-date bookkeeping.
type costOfSalesService struct {
	books    portsrepo.BookRepository
	records  portsrepo.RecordRepository
	accounts portsrepo.AccountRepository
	tasks    portsrepo.TaskReader
	rebuild  portssvc.RebuildSvc
	resolver *costResolver
	now      func() time.Time
}

// CostOfSalesOption customises the service, mostly for tests.
type CostOfSalesOption func(*costOfSalesService)

// WithClock overrides the time source used for the toDate default.
func WithClock(now func() time.Time) CostOfSalesOption {
	return func(s *costOfSalesService) { s.now = now }
}

// WithCostLookbackMonths overrides the financial-book query window used
// when merging additional costs and credit notes.
func WithCostLookbackMonths(months int) CostOfSalesOption {
	return func(s *costOfSalesService) {
		s.resolver = newCostResolver(s.records, months)
	}
}

// NewCostOfSalesService creates the calculation service.
func NewCostOfSalesService(
	books portsrepo.BookRepository,
	records portsrepo.RecordRepository,
	accounts portsrepo.AccountRepository,
	tasks portsrepo.TaskReader,
	rebuild portssvc.RebuildSvc,
	opts ...CostOfSalesOption,
) portssvc.CostOfSalesSvc {
	s := &costOfSalesService{
		books:    books,
		records:  records,
		accounts: accounts,
		tasks:    tasks,
		rebuild:  rebuild,
		resolver: newCostResolver(records, defaultCostLookbackMonths),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure costOfSalesService implements the facade.
var _ portssvc.CostOfSalesSvc = (*costOfSalesService)(nil)

// CalculateCostOfSales runs one FIFO matching pass for a good account.
//
// The run is a single logical thread: remote reads up front, pure
// allocation in the middle, one batch commit at the end. Concurrent
// writers are detected (locked records), not prevented; a conflict aborts
// with nothing committed.
func (s *costOfSalesService) CalculateCostOfSales(ctx context.Context, bookID string, accountID string, toDate *time.Time) (domain.Summary, error) {
	summary := domain.NewSummary(bookID, accountID)

	inventoryBook, err := s.books.FindBookByID(ctx, bookID)
	if err != nil {
		return summary, fmt.Errorf("failed to load book %s: %w", bookID, err)
	}
	account, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		return summary, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}
	if account.BookID != inventoryBook.BookID {
		return summary, fmt.Errorf("%w: account %s does not belong to book %s", apperrors.ErrValidation, accountID, bookID)
	}

	if account.NeedsRebuild {
		// Incremental matching over reordered history is wrong by
		// construction; hand the account to the rebuild worker instead.
		if _, err := s.rebuild.EnqueueRebuild(ctx, bookID, accountID); err != nil {
			return summary, fmt.Errorf("failed to enqueue rebuild for account %s: %w", accountID, err)
		}
		return summary.Rebuild(), nil
	}

	excCode := account.ExchangeCode()
	financialBook := s.findFinancialBook(ctx, *inventoryBook, excCode)
	if financialBook == nil {
		return summary.Skipped(fmt.Sprintf("no financial book found for exchange code %q of account %s", excCode, account.Name)), nil
	}

	to := s.now()
	if toDate != nil {
		to = *toDate
	}
	before := to.AddDate(0, 0, 1) // exclusive bound, toDate itself included

	candidates, err := s.records.QueryRecords(ctx, inventoryBook.BookID, domain.RecordQuery{
		Account: account.Name,
		Before:  &before,
	})
	if err != nil {
		return summary, fmt.Errorf("%w: failed to query records for account %s: %w", apperrors.ErrRemote, account.Name, err)
	}

	var sales, purchases []domain.Record
	totalSold := decimal.Zero
	totalPurchased := decimal.Zero
	for _, rec := range candidates {
		if rec.Checked {
			continue
		}
		switch {
		case rec.IsSale():
			sales = append(sales, rec)
			totalSold = totalSold.Add(rec.Amount)
		case rec.IsPurchase():
			purchases = append(purchases, rec)
			totalPurchased = totalPurchased.Add(rec.Amount)
		}
	}

	if totalSold.IsZero() {
		return summary, nil
	}
	// Capacity is checked once for the whole run, before any allocation.
	if totalSold.GreaterThan(totalPurchased) {
		return summary.QuantityError(), nil
	}

	SortFIFO(sales)
	SortFIFO(purchases)

	proc := newBatchProcessor(s.records)
	alloc := &allocator{
		resolver:        s.resolver,
		inventoryBook:   *inventoryBook,
		financialBook:   *financialBook,
		goodAccountName: account.Name,
		proc:            proc,
	}

	purchasePtrs := make([]*domain.Record, len(purchases))
	for i := range purchases {
		purchasePtrs[i] = &purchases[i]
	}

	for i := range sales {
		sale := &sales[i]
		if sale.Sale == nil {
			sale.Sale = &domain.SaleProps{}
		}
		saleCost, allocated, err := alloc.ProcessSale(ctx, sale, purchasePtrs)
		if err != nil {
			return summary, err
		}
		if proc.HasLockConflict() {
			return summary.LockError(), nil
		}
		if allocated {
			if err := s.stageCostOfSale(ctx, *financialBook, *inventoryBook, *sale, saleCost, proc); err != nil {
				return summary, err
			}
		}
	}

	if err := proc.Commit(ctx); err != nil {
		return summary, err
	}

	if err := s.storeLastCalcDate(ctx, *account, sales); err != nil {
		return summary, err
	}

	slog.InfoContext(ctx, "Cost of sales run committed",
		slog.String("account", account.Name),
		slog.Int("sales", len(sales)),
		slog.Int("mutations", proc.Pending()),
	)
	return summary.CalculatingAsync(), nil
}

// Validate refuses to start while the inventory book still has pending
// background tasks.
func (s *costOfSalesService) Validate(ctx context.Context, bookID string) error {
	inventoryBook, err := s.books.FindBookByID(ctx, bookID)
	if err != nil {
		return fmt.Errorf("failed to load book %s: %w", bookID, err)
	}
	pending, err := s.tasks.CountPendingTasks(ctx, inventoryBook.BookID)
	if err != nil {
		return fmt.Errorf("%w: failed to count pending tasks: %w", apperrors.ErrRemote, err)
	}
	if pending > 0 {
		return fmt.Errorf("%w: inventory book has %d pending tasks", apperrors.ErrValidation, pending)
	}
	return nil
}

// findFinancialBook picks the collection book whose exchange code matches.
func (s *costOfSalesService) findFinancialBook(ctx context.Context, inventoryBook domain.Book, excCode string) *domain.Book {
	if excCode == "" || inventoryBook.CollectionID == "" {
		return nil
	}
	books, err := s.books.FindBooksByCollection(ctx, inventoryBook.CollectionID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to list collection books", slog.String("error", err.Error()))
		return nil
	}
	for i := range books {
		if !books[i].IsInventory && books[i].ExchangeCode == excCode {
			return &books[i]
		}
	}
	return nil
}

// stageCostOfSale posts the allocated cost into the financial book,
// cross-referenced to the sale so re-runs never duplicate it.
func (s *costOfSalesService) stageCostOfSale(ctx context.Context, financialBook, inventoryBook domain.Book, sale domain.Record, saleCost decimal.Decimal, proc *batchProcessor) error {
	existing, err := s.records.QueryRecords(ctx, financialBook.BookID, domain.RecordQuery{RemoteID: sale.RecordID})
	if err != nil {
		return fmt.Errorf("%w: failed to check for existing cost-of-sale record: %w", apperrors.ErrRemote, err)
	}
	if len(existing) > 0 {
		return nil
	}

	goodAccount, err := s.ensureFinancialGoodAccount(ctx, financialBook, inventoryBook, sale.Credit.Name)
	if err != nil {
		return err
	}
	costAccount, err := s.ensureAccount(ctx, financialBook.BookID, costOfSalesAccountName, domain.Outgoing, nil)
	if err != nil {
		return err
	}

	quantitySold := sale.Amount
	proc.StageCreate(domain.Record{
		BookID:      financialBook.BookID,
		Date:        sale.Date,
		Amount:      saleCost,
		Credit:      domain.AccountRef{AccountID: goodAccount.AccountID, Name: goodAccount.Name, AccountType: goodAccount.AccountType},
		Debit:       domain.AccountRef{AccountID: costAccount.AccountID, Name: costAccount.Name, AccountType: costAccount.AccountType},
		Description: "#cost_of_sale " + sale.Description,
		Checked:     true,
		RemoteIDs:   []string{sale.RecordID},
		Financial: &domain.FinancialProps{
			SaleInvoice:  sale.Sale.SaleInvoice,
			QuantitySold: &quantitySold,
		},
	})
	return nil
}

// ensureFinancialGoodAccount mirrors the inventory good account into the
// financial book, replicating its groups, when it does not exist yet.
func (s *costOfSalesService) ensureFinancialGoodAccount(ctx context.Context, financialBook, inventoryBook domain.Book, name string) (*domain.Account, error) {
	account, err := s.accounts.FindAccountByName(ctx, financialBook.BookID, name)
	if err == nil {
		return account, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("%w: failed to find account %s: %w", apperrors.ErrRemote, name, err)
	}

	inventoryAccount, err := s.accounts.FindAccountByName(ctx, inventoryBook.BookID, name)
	var groups []domain.Group
	switch {
	case err == nil:
		groups = inventoryAccount.Groups
	case !isNotFound(err):
		return nil, fmt.Errorf("%w: failed to find account %s: %w", apperrors.ErrRemote, name, err)
	}
	return s.ensureAccount(ctx, financialBook.BookID, name, domain.Asset, groups)
}

// ensureAccount fetches an account by name or creates it.
func (s *costOfSalesService) ensureAccount(ctx context.Context, bookID, name string, accountType domain.AccountType, groups []domain.Group) (*domain.Account, error) {
	account, err := s.accounts.FindAccountByName(ctx, bookID, name)
	if err == nil {
		return account, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("%w: failed to find account %s: %w", apperrors.ErrRemote, name, err)
	}

	created := domain.Account{
		AccountID:   uuid.NewString(),
		BookID:      bookID,
		Name:        name,
		AccountType: accountType,
		Groups:      groups,
	}
	if err := s.accounts.SaveAccount(ctx, created); err != nil {
		return nil, fmt.Errorf("%w: failed to create account %s: %w", apperrors.ErrRemote, name, err)
	}
	return &created, nil
}

// storeLastCalcDate persists the date of the last processed sale, but
// never moves it backwards.
func (s *costOfSalesService) storeLastCalcDate(ctx context.Context, account domain.Account, sales []domain.Record) error {
	if len(sales) == 0 {
		return nil
	}
	lastSale := sales[len(sales)-1]
	if account.CalcDateValue() >= lastSale.DateValue() {
		return nil
	}
	if err := s.accounts.SetCOGSCalcDate(ctx, account.AccountID, &lastSale.Date); err != nil {
		return fmt.Errorf("%w: failed to store calculation date: %w", apperrors.ErrRemote, err)
	}
	return nil
}
