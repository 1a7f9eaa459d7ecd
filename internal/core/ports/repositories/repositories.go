package repositories

// RepositoryProvider bundles the repository facades a service container
// needs. Concrete implementations live under
// internal/repositories/database; tests substitute mocks.
type RepositoryProvider struct {
	BookRepo    BookRepository
	RecordRepo  RecordRepository
	AccountRepo AccountRepository
	TaskRepo    TaskRepository
}
