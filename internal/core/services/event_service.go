package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledgerbots/cost_of_sales_app/internal/apperrors"
	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	portsrepo "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/repositories"
	portssvc "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/services"
)

// Counterpart account names on the inventory book. Purchases credit Buy,
// sales debit Sell; the good account always sits on the other side.
const (
	buyAccountName  = "Buy"
	sellAccountName = "Sell"
)

// eventService replicates financial-book goods movements into the
// inventory book and keeps the rebuild flag honest when history changes
// behind the engine's back.
type eventService struct {
	books    portsrepo.BookRepository
	records  portsrepo.RecordRepository
	accounts portsrepo.AccountRepository
	rebuild  portssvc.RebuildSvc
}

// NewEventService creates the webhook event service.
func NewEventService(
	books portsrepo.BookRepository,
	records portsrepo.RecordRepository,
	accounts portsrepo.AccountRepository,
	rebuild portssvc.RebuildSvc,
) portssvc.EventSvc {
	return &eventService{books: books, records: records, accounts: accounts, rebuild: rebuild}
}

var _ portssvc.EventSvc = (*eventService)(nil)

// HandleEvent dispatches one webhook event. The returned string describes
// what was done; empty means the event did not concern goods.
func (s *eventService) HandleEvent(ctx context.Context, event domain.Event) (string, error) {
	switch event.Type {
	case domain.EventTransactionChecked:
		return s.handleChecked(ctx, event)
	case domain.EventTransactionUpdated, domain.EventTransactionDeleted:
		return s.handleHistoryChange(ctx, event)
	default:
		return "", fmt.Errorf("%w: unknown event type %q", apperrors.ErrValidation, event.Type)
	}
}

// handleChecked replicates a checked financial purchase or sale of goods
// into the inventory book.
func (s *eventService) handleChecked(ctx context.Context, event domain.Event) (string, error) {
	rec := event.Record
	if rec.Financial == nil || rec.Financial.Quantity == nil || rec.Financial.Quantity.IsZero() {
		return "", nil
	}

	financialBook, err := s.books.FindBookByID(ctx, event.BookID)
	if err != nil {
		return "", fmt.Errorf("failed to load book %s: %w", event.BookID, err)
	}
	if financialBook.IsInventory {
		return "", nil
	}
	inventoryBook, err := s.findInventoryBook(ctx, *financialBook)
	if err != nil {
		return "", err
	}
	if inventoryBook == nil {
		return "", nil
	}

	goodName, isSale := classifyGoodsMovement(rec)
	if goodName == "" {
		return "", nil
	}

	// Replication is idempotent: a retried webhook finds the replica.
	existing, err := s.records.QueryRecords(ctx, inventoryBook.BookID, domain.RecordQuery{RemoteID: rec.RecordID})
	if err != nil {
		return "", fmt.Errorf("%w: failed to check for replicated record: %w", apperrors.ErrRemote, err)
	}
	if len(existing) > 0 {
		return "", nil
	}

	goodAccount, err := s.ensureInventoryGoodAccount(ctx, *inventoryBook, *financialBook, goodName)
	if err != nil {
		return "", err
	}

	quantity := *rec.Financial.Quantity
	replica := domain.Record{
		BookID:      inventoryBook.BookID,
		Date:        rec.Date,
		Amount:      quantity,
		Description: rec.Description,
		RemoteIDs:   []string{rec.RecordID},
	}
	goodRef := domain.AccountRef{AccountID: goodAccount.AccountID, Name: goodAccount.Name, AccountType: goodAccount.AccountType}

	var action string
	if isSale {
		sell, err := s.ensureCounterpartAccount(ctx, inventoryBook.BookID, sellAccountName, domain.Outgoing)
		if err != nil {
			return "", err
		}
		replica.Credit = goodRef
		replica.Debit = domain.AccountRef{AccountID: sell.AccountID, Name: sell.Name, AccountType: sell.AccountType}
		replica.Sale = &domain.SaleProps{
			SaleInvoice:  rec.Financial.SaleInvoice,
			SaleAmount:   rec.Amount,
			ExchangeCode: financialBook.ExchangeCode,
		}
		action = "sale replicated to inventory book"
	} else {
		buy, err := s.ensureCounterpartAccount(ctx, inventoryBook.BookID, buyAccountName, domain.Incoming)
		if err != nil {
			return "", err
		}
		replica.Credit = domain.AccountRef{AccountID: buy.AccountID, Name: buy.Name, AccountType: buy.AccountType}
		replica.Debit = goodRef
		code := rec.Financial.PurchaseCode
		if code == "" {
			code = rec.Financial.PurchaseInvoice
		}
		replica.Purchase = &domain.PurchaseProps{
			PurchaseCode:     code,
			OriginalQuantity: quantity,
			PurchaseCost:     rec.Amount,
			TotalCost:        rec.Amount,
			ExchangeCode:     financialBook.ExchangeCode,
		}
		action = "purchase replicated to inventory book"
	}

	if _, err := s.records.CreateRecord(ctx, replica); err != nil {
		return "", fmt.Errorf("%w: failed to replicate record %s: %w", apperrors.ErrRemote, rec.RecordID, err)
	}

	// A movement dated at or before the last calculation invalidates the
	// incremental history.
	if goodAccount.CalcDateValue() > 0 && domain.DateValue(rec.Date) <= goodAccount.CalcDateValue() {
		if err := s.rebuild.FlagForRebuild(ctx, goodAccount.AccountID); err != nil {
			return "", err
		}
		action += "; backdated, account flagged for rebuild"
	}

	slog.InfoContext(ctx, "Replicated goods movement",
		slog.String("record_id", rec.RecordID),
		slog.String("good_account", goodAccount.Name),
		slog.Bool("sale", isSale),
	)
	return action, nil
}

// handleHistoryChange reacts to edits or deletions of already-posted
// transactions: the replica's good account can no longer trust its
// incremental state.
func (s *eventService) handleHistoryChange(ctx context.Context, event domain.Event) (string, error) {
	rec := event.Record

	financialBook, err := s.books.FindBookByID(ctx, event.BookID)
	if err != nil {
		return "", fmt.Errorf("failed to load book %s: %w", event.BookID, err)
	}
	if financialBook.IsInventory {
		return "", nil
	}
	inventoryBook, err := s.findInventoryBook(ctx, *financialBook)
	if err != nil {
		return "", err
	}
	if inventoryBook == nil {
		return "", nil
	}

	replicas, err := s.records.QueryRecords(ctx, inventoryBook.BookID, domain.RecordQuery{RemoteID: rec.RecordID})
	if err != nil {
		return "", fmt.Errorf("%w: failed to find replicated record: %w", apperrors.ErrRemote, err)
	}
	if len(replicas) == 0 {
		return "", nil
	}

	replica := replicas[0]
	goodRef := replica.GoodAccount()
	goodAccount, err := s.accounts.FindAccountByID(ctx, goodRef.AccountID)
	if err != nil {
		return "", fmt.Errorf("failed to load account %s: %w", goodRef.AccountID, err)
	}

	if event.Type == domain.EventTransactionDeleted && !replica.Checked {
		// Unconsumed replica of a deleted transaction can simply go.
		if err := s.records.TrashRecord(ctx, replica.RecordID); err != nil {
			return "", fmt.Errorf("%w: failed to trash replica %s: %w", apperrors.ErrRemote, replica.RecordID, err)
		}
		return "replica removed from inventory book", nil
	}

	if err := s.rebuild.FlagForRebuild(ctx, goodAccount.AccountID); err != nil {
		return "", err
	}
	return "account flagged for rebuild", nil
}

// findInventoryBook locates the inventory book in the financial book's
// collection.
func (s *eventService) findInventoryBook(ctx context.Context, financialBook domain.Book) (*domain.Book, error) {
	if financialBook.CollectionID == "" {
		return nil, nil
	}
	books, err := s.books.FindBooksByCollection(ctx, financialBook.CollectionID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list collection books: %w", apperrors.ErrRemote, err)
	}
	for i := range books {
		if books[i].IsInventory {
			return &books[i], nil
		}
	}
	return nil, nil
}

// ensureInventoryGoodAccount finds or creates the good account on the
// inventory book, carrying the exchange code over as a group so the
// engine can route its cost postings back.
func (s *eventService) ensureInventoryGoodAccount(ctx context.Context, inventoryBook, financialBook domain.Book, name string) (*domain.Account, error) {
	account, err := s.accounts.FindAccountByName(ctx, inventoryBook.BookID, name)
	if err == nil {
		return account, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("%w: failed to find account %s: %w", apperrors.ErrRemote, name, err)
	}

	group := domain.Group{
		GroupID:      newID(),
		BookID:       inventoryBook.BookID,
		Name:         "Goods " + financialBook.ExchangeCode,
		ExchangeCode: financialBook.ExchangeCode,
	}
	if err := s.accounts.SaveGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("%w: failed to create group %s: %w", apperrors.ErrRemote, group.Name, err)
	}

	created := domain.Account{
		AccountID:   newID(),
		BookID:      inventoryBook.BookID,
		Name:        name,
		AccountType: domain.Asset,
		Groups:      []domain.Group{group},
	}
	if err := s.accounts.SaveAccount(ctx, created); err != nil {
		return nil, fmt.Errorf("%w: failed to create account %s: %w", apperrors.ErrRemote, name, err)
	}
	return &created, nil
}

// ensureCounterpartAccount finds or creates the Buy/Sell account.
func (s *eventService) ensureCounterpartAccount(ctx context.Context, bookID, name string, accountType domain.AccountType) (*domain.Account, error) {
	account, err := s.accounts.FindAccountByName(ctx, bookID, name)
	if err == nil {
		return account, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("%w: failed to find account %s: %w", apperrors.ErrRemote, name, err)
	}
	created := domain.Account{
		AccountID:   newID(),
		BookID:      bookID,
		Name:        name,
		AccountType: accountType,
	}
	if err := s.accounts.SaveAccount(ctx, created); err != nil {
		return nil, fmt.Errorf("%w: failed to create account %s: %w", apperrors.ErrRemote, name, err)
	}
	return &created, nil
}

// classifyGoodsMovement names the good account on a financial transaction
// and whether goods are leaving. The explicit good property wins; without
// it the asset side of the transaction is taken.
func classifyGoodsMovement(rec domain.Record) (string, bool) {
	if rec.Financial.Good != "" {
		return rec.Financial.Good, rec.Credit.Name == rec.Financial.Good
	}
	if rec.Debit.AccountType == domain.Asset {
		return rec.Debit.Name, false
	}
	if rec.Credit.AccountType == domain.Asset {
		return rec.Credit.Name, true
	}
	return "", false
}
