package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerbots/cost_of_sales_app/internal/apperrors"
	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	portsrepo "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/repositories"
	"github.com/ledgerbots/cost_of_sales_app/internal/models"
	"github.com/ledgerbots/cost_of_sales_app/internal/utils/mapping"
)

type PgxRecordRepository struct {
	BaseRepository
}

// newPgxRecordRepository creates a new repository for record data.
func newPgxRecordRepository(pool *pgxpool.Pool) portsrepo.RecordRepository {
	return &PgxRecordRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.RecordRepository = (*PgxRecordRepository)(nil)

const recordColumns = `record_id, book_id, record_date, amount,
	credit_account_id, credit_account_name, credit_account_type,
	debit_account_id, debit_account_name, debit_account_type,
	description, checked, locked, remote_ids,
	purchase_props, sale_props, financial_props,
	created_at, created_by, last_updated_at, last_updated_by`

func scanRecord(row pgx.Row) (models.Record, error) {
	var m models.Record
	err := row.Scan(
		&m.RecordID,
		&m.BookID,
		&m.RecordDate,
		&m.Amount,
		&m.CreditID,
		&m.CreditName,
		&m.CreditType,
		&m.DebitID,
		&m.DebitName,
		&m.DebitType,
		&m.Description,
		&m.Checked,
		&m.Locked,
		&m.RemoteIDs,
		&m.PurchaseProps,
		&m.SaleProps,
		&m.FinancialProps,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// QueryRecords retrieves the records of a book matching the query, ordered
// by date then creation order.
func (r *PgxRecordRepository) QueryRecords(ctx context.Context, bookID string, query domain.RecordQuery) ([]domain.Record, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + recordColumns + ` FROM records WHERE book_id = $1`)
	args := []any{bookID}

	addArg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if query.Account != "" {
		p := addArg(query.Account)
		sb.WriteString(` AND (credit_account_name = ` + p + ` OR debit_account_name = ` + p + `)`)
	}
	if query.PurchaseCode != "" {
		p := addArg(query.PurchaseCode)
		sb.WriteString(` AND (purchase_props->>'purchaseCode' = ` + p + ` OR financial_props->>'purchaseCode' = ` + p + `)`)
	}
	if query.RemoteID != "" {
		p := addArg(query.RemoteID)
		sb.WriteString(` AND ` + p + ` = ANY(remote_ids)`)
	}
	if query.After != nil {
		p := addArg(*query.After)
		sb.WriteString(` AND record_date > ` + p)
	}
	if query.Before != nil {
		p := addArg(*query.Before)
		sb.WriteString(` AND record_date < ` + p)
	}
	sb.WriteString(` ORDER BY record_date, created_at, record_id;`)

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records of book %s (%s): %w", bookID, query.String(), err)
	}
	defer rows.Close()

	modelRecords, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Record, error) {
		return scanRecord(row)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Record{}, nil
		}
		return nil, fmt.Errorf("failed to scan records of book %s: %w", bookID, err)
	}

	domainRecords := make([]domain.Record, len(modelRecords))
	for i, m := range modelRecords {
		domainRecords[i], err = mapping.ToDomainRecord(m)
		if err != nil {
			return nil, err
		}
	}
	return domainRecords, nil
}

// CreateRecord persists a new record and returns it with its
// store-assigned identifier.
func (r *PgxRecordRepository) CreateRecord(ctx context.Context, record domain.Record) (*domain.Record, error) {
	if record.RecordID == "" {
		record.RecordID = uuid.NewString()
	}
	now := time.Now()
	record.CreatedAt = now
	record.LastUpdatedAt = now

	m, err := mapping.ToModelRecord(record)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err = r.Pool.Exec(ctx, query,
		m.RecordID,
		m.BookID,
		m.RecordDate,
		m.Amount,
		m.CreditID,
		m.CreditName,
		m.CreditType,
		m.DebitID,
		m.DebitName,
		m.DebitType,
		m.Description,
		m.Checked,
		m.Locked,
		m.RemoteIDs,
		m.PurchaseProps,
		m.SaleProps,
		m.FinancialProps,
		now,
		"system",
		now,
		"system",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create record in book %s: %w", record.BookID, err)
	}
	return &record, nil
}

// UpdateRecord overwrites an existing record's amount, accounts, checked
// flag, properties and remote ids.
func (r *PgxRecordRepository) UpdateRecord(ctx context.Context, record domain.Record) error {
	m, err := mapping.ToModelRecord(record)
	if err != nil {
		return err
	}

	query := `
		UPDATE records SET
			record_date = $2,
			amount = $3,
			credit_account_id = $4, credit_account_name = $5, credit_account_type = $6,
			debit_account_id = $7, debit_account_name = $8, debit_account_type = $9,
			description = $10,
			checked = $11,
			remote_ids = $12,
			purchase_props = $13,
			sale_props = $14,
			financial_props = $15,
			last_updated_at = $16
		WHERE record_id = $1 AND NOT locked;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.RecordID,
		m.RecordDate,
		m.Amount,
		m.CreditID,
		m.CreditName,
		m.CreditType,
		m.DebitID,
		m.DebitName,
		m.DebitType,
		m.Description,
		m.Checked,
		m.RemoteIDs,
		m.PurchaseProps,
		m.SaleProps,
		m.FinancialProps,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", record.RecordID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either gone or locked since it was read.
		return fmt.Errorf("%w: record %s", apperrors.ErrLocked, record.RecordID)
	}
	return nil
}

// TrashRecord removes a record from its book.
func (r *PgxRecordRepository) TrashRecord(ctx context.Context, recordID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM records WHERE record_id = $1;`, recordID)
	if err != nil {
		return fmt.Errorf("failed to trash record %s: %w", recordID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
