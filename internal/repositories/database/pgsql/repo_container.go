package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	bookRepo := newPgxBookRepository(dbPool)
	recordRepo := newPgxRecordRepository(dbPool)
	accountRepo := newPgxAccountRepository(dbPool)
	taskRepo := newPgxTaskRepository(dbPool)

	return portsrepo.RepositoryProvider{
		BookRepo:    bookRepo,
		RecordRepo:  recordRepo,
		AccountRepo: accountRepo,
		TaskRepo:    taskRepo,
	}
}
