package services

import (
	portsrepo "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/repositories"
	portssvc "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/services"
	"github.com/ledgerbots/cost_of_sales_app/internal/platform/config"
)

// Container bundles the service layer plus the lifecycle hooks the main
// package drives.
type Container struct {
	portssvc.ServiceContainer

	rebuild *rebuildService
}

// NewContainer wires the full service graph.
//
// The rebuild and calculation services depend on each other: calculation
// enqueues rebuilds, the rebuild worker reruns calculations. The cycle is
// closed after construction via SetCalculator.
func NewContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *Container {
	rebuild := NewRebuildService(repos.BookRepo, repos.RecordRepo, repos.AccountRepo, repos.TaskRepo)

	costOfSales := NewCostOfSalesService(
		repos.BookRepo,
		repos.RecordRepo,
		repos.AccountRepo,
		repos.TaskRepo,
		rebuild,
		WithCostLookbackMonths(cfg.CostLookbackMonths),
	)
	rebuild.SetCalculator(costOfSales)

	return &Container{
		ServiceContainer: portssvc.ServiceContainer{
			CostOfSales: costOfSales,
			Rebuild:     rebuild,
			Events:      NewEventService(repos.BookRepo, repos.RecordRepo, repos.AccountRepo, rebuild),
			Auth:        NewAuthService(cfg),
		},
		rebuild: rebuild,
	}
}

// Start launches the background rebuild worker.
func (c *Container) Start() {
	c.rebuild.Start()
}

// Stop shuts the worker down and waits for the in-flight task.
func (c *Container) Stop() {
	c.rebuild.Stop()
}
