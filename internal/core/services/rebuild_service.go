package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbots/cost_of_sales_app/internal/apperrors"
	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	portsrepo "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/repositories"
	portssvc "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/services"
)

// rebuildQueueSize bounds how many rebuild tasks may wait for the worker.
const rebuildQueueSize = 64

// rebuildService owns the needs-rebuild flag and the asynchronous
// full-history reprocessing worker.
//
// A rebuild unwinds everything a previous calculation produced for one
// account (splits, liquidation logs, checked flags, posted cost-of-sale
// records, the calc date), clears the flag, and runs the calculation
// again from scratch.
type rebuildService struct {
	books    portsrepo.BookRepository
	records  portsrepo.RecordRepository
	accounts portsrepo.AccountRepository
	tasks    portsrepo.TaskRepository

	// calculator is injected after construction; the calculation service
	// depends on this one for the rebuild short-circuit.
	calcMu     sync.RWMutex
	calculator portssvc.CostOfSalesSvc

	queue    chan domain.Task
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRebuildService creates the rebuild service. Call Start to launch the
// worker and SetCalculator before the first task can run.
func NewRebuildService(
	books portsrepo.BookRepository,
	records portsrepo.RecordRepository,
	accounts portsrepo.AccountRepository,
	tasks portsrepo.TaskRepository,
) *rebuildService {
	return &rebuildService{
		books:    books,
		records:  records,
		accounts: accounts,
		tasks:    tasks,
		queue:    make(chan domain.Task, rebuildQueueSize),
		stop:     make(chan struct{}),
	}
}

var _ portssvc.RebuildSvc = (*rebuildService)(nil)

// SetCalculator wires the calculation service used to re-run accounts
// after their history has been reset. Must be called before Start.
func (s *rebuildService) SetCalculator(calc portssvc.CostOfSalesSvc) {
	s.calcMu.Lock()
	defer s.calcMu.Unlock()
	s.calculator = calc
}

// Start launches the background worker goroutine.
func (s *rebuildService) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop signals the worker to exit and waits for the in-flight task.
func (s *rebuildService) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}

// FlagForRebuild marks an account's FIFO history as stale. The next
// calculation request turns the flag into a queued rebuild task.
func (s *rebuildService) FlagForRebuild(ctx context.Context, accountID string) error {
	if err := s.accounts.SetNeedsRebuild(ctx, accountID, true); err != nil {
		return fmt.Errorf("%w: failed to flag account %s for rebuild: %w", apperrors.ErrRemote, accountID, err)
	}
	slog.InfoContext(ctx, "Account flagged for rebuild", slog.String("account_id", accountID))
	return nil
}

// EnqueueRebuild persists a rebuild task and hands it to the worker.
func (s *rebuildService) EnqueueRebuild(ctx context.Context, bookID string, accountID string) (domain.Task, error) {
	task := domain.Task{
		TaskID:    uuid.NewString(),
		BookID:    bookID,
		AccountID: accountID,
		Kind:      domain.TaskRebuild,
		Status:    domain.TaskPending,
		CreatedAt: time.Now(),
	}
	if err := s.tasks.SaveTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("%w: failed to persist rebuild task: %w", apperrors.ErrRemote, err)
	}

	select {
	case s.queue <- task:
	default:
		// Queue full. The task stays pending in the store and keeps
		// validation failing until a restart picks it up.
		slog.WarnContext(ctx, "Rebuild queue full, task left pending",
			slog.String("task_id", task.TaskID),
			slog.String("account_id", accountID),
		)
	}
	return task, nil
}

func (s *rebuildService) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stop:
			return
		case task := <-s.queue:
			s.execute(task)
		}
	}
}

func (s *rebuildService) execute(task domain.Task) {
	ctx := context.Background()
	logger := slog.With(
		slog.String("task_id", task.TaskID),
		slog.String("book_id", task.BookID),
		slog.String("account_id", task.AccountID),
	)
	logger.InfoContext(ctx, "Rebuild task started")

	if err := s.tasks.UpdateTaskStatus(ctx, task.TaskID, domain.TaskRunning, ""); err != nil {
		logger.ErrorContext(ctx, "Failed to mark rebuild task running", slog.String("error", err.Error()))
	}

	if err := s.rebuildAccount(ctx, task.BookID, task.AccountID); err != nil {
		logger.ErrorContext(ctx, "Rebuild task failed", slog.String("error", err.Error()))
		if uerr := s.tasks.UpdateTaskStatus(ctx, task.TaskID, domain.TaskFailed, err.Error()); uerr != nil {
			logger.ErrorContext(ctx, "Failed to mark rebuild task failed", slog.String("error", uerr.Error()))
		}
		return
	}

	if err := s.tasks.UpdateTaskStatus(ctx, task.TaskID, domain.TaskDone, ""); err != nil {
		logger.ErrorContext(ctx, "Failed to mark rebuild task done", slog.String("error", err.Error()))
	}
	logger.InfoContext(ctx, "Rebuild task finished")
}

// rebuildAccount resets the account's FIFO history and reruns the
// calculation over it.
func (s *rebuildService) rebuildAccount(ctx context.Context, bookID string, accountID string) error {
	inventoryBook, err := s.books.FindBookByID(ctx, bookID)
	if err != nil {
		return fmt.Errorf("failed to load book %s: %w", bookID, err)
	}
	account, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account %s: %w", accountID, err)
	}

	records, err := s.records.QueryRecords(ctx, inventoryBook.BookID, domain.RecordQuery{Account: account.Name})
	if err != nil {
		return fmt.Errorf("%w: failed to query records for account %s: %w", apperrors.ErrRemote, account.Name, err)
	}

	var saleIDs []string
	for _, rec := range records {
		switch {
		case rec.IsPurchase():
			if err := s.resetPurchase(ctx, rec); err != nil {
				return err
			}
		case rec.IsSale():
			saleIDs = append(saleIDs, rec.RecordID)
			if err := s.resetSale(ctx, rec); err != nil {
				return err
			}
		}
	}

	if err := s.trashCostOfSaleRecords(ctx, *inventoryBook, *account, saleIDs); err != nil {
		return err
	}

	if err := s.accounts.SetCOGSCalcDate(ctx, accountID, nil); err != nil {
		return fmt.Errorf("%w: failed to clear calculation date: %w", apperrors.ErrRemote, err)
	}
	if err := s.accounts.SetNeedsRebuild(ctx, accountID, false); err != nil {
		return fmt.Errorf("%w: failed to clear rebuild flag: %w", apperrors.ErrRemote, err)
	}

	s.calcMu.RLock()
	calc := s.calculator
	s.calcMu.RUnlock()
	if calc == nil {
		return fmt.Errorf("rebuild worker has no calculator wired")
	}
	summary, err := calc.CalculateCostOfSales(ctx, bookID, accountID, nil)
	if err != nil {
		return fmt.Errorf("recalculation after rebuild failed: %w", err)
	}
	slog.InfoContext(ctx, "Recalculation after rebuild finished",
		slog.String("account", account.Name),
		slog.String("result", string(summary.Result)),
	)
	return nil
}

// resetPurchase trashes split children and restores root purchases to
// their as-created quantity and cost.
func (s *rebuildService) resetPurchase(ctx context.Context, rec domain.Record) error {
	props := rec.Purchase
	if props.ParentID != "" {
		if err := s.records.TrashRecord(ctx, rec.RecordID); err != nil {
			return fmt.Errorf("%w: failed to trash split record %s: %w", apperrors.ErrRemote, rec.RecordID, err)
		}
		return nil
	}

	rec.Amount = props.OriginalQuantity
	rec.Checked = false
	props.TotalCost = props.PurchaseCost
	props.AdditionalCosts = nil
	props.CreditNote = nil
	props.LiquidationLog = nil
	if err := s.records.UpdateRecord(ctx, rec); err != nil {
		return fmt.Errorf("%w: failed to restore purchase %s: %w", apperrors.ErrRemote, rec.RecordID, err)
	}
	return nil
}

// resetSale unchecks the sale and clears its allocation results.
func (s *rebuildService) resetSale(ctx context.Context, rec domain.Record) error {
	rec.Checked = false
	if rec.Sale != nil {
		rec.Sale.TotalCost = decimal.Zero
		rec.Sale.PurchaseLog = nil
	}
	if err := s.records.UpdateRecord(ctx, rec); err != nil {
		return fmt.Errorf("%w: failed to reset sale %s: %w", apperrors.ErrRemote, rec.RecordID, err)
	}
	return nil
}

// trashCostOfSaleRecords removes the financial-book postings produced by
// earlier runs, found through the remote id back-reference to each sale.
func (s *rebuildService) trashCostOfSaleRecords(ctx context.Context, inventoryBook domain.Book, account domain.Account, saleIDs []string) error {
	excCode := account.ExchangeCode()
	if excCode == "" || inventoryBook.CollectionID == "" {
		return nil
	}
	books, err := s.books.FindBooksByCollection(ctx, inventoryBook.CollectionID)
	if err != nil {
		return fmt.Errorf("%w: failed to list collection books: %w", apperrors.ErrRemote, err)
	}
	var financialBook *domain.Book
	for i := range books {
		if !books[i].IsInventory && books[i].ExchangeCode == excCode {
			financialBook = &books[i]
			break
		}
	}
	if financialBook == nil {
		return nil
	}

	for _, saleID := range saleIDs {
		posted, err := s.records.QueryRecords(ctx, financialBook.BookID, domain.RecordQuery{RemoteID: saleID})
		if err != nil {
			return fmt.Errorf("%w: failed to find cost-of-sale records for sale %s: %w", apperrors.ErrRemote, saleID, err)
		}
		for _, rec := range posted {
			if err := s.records.TrashRecord(ctx, rec.RecordID); err != nil {
				return fmt.Errorf("%w: failed to trash cost-of-sale record %s: %w", apperrors.ErrRemote, rec.RecordID, err)
			}
		}
	}
	return nil
}
