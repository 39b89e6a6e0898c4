// Package container provides dependency injection for the fintrack application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"
	"time"

	"fjacquet/fintrack/internal/aggregate"
	"fjacquet/fintrack/internal/config"
	"fjacquet/fintrack/internal/database"
	"fjacquet/fintrack/internal/export"
	"fjacquet/fintrack/internal/ledger"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/report"
	"fjacquet/fintrack/internal/scope"
	"fjacquet/fintrack/internal/store"
	"fjacquet/fintrack/internal/validation"

	"gorm.io/gorm"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger logging.Logger
	config *config.Config
	db     *gorm.DB
	clock  func() time.Time

	store     *store.Store
	orgs      *scope.Service
	ledger    *ledger.Engine
	aggregate *aggregate.Engine
	reports   *report.Generator
	exporter  *export.Exporter
}

// Option customizes container construction.
type Option func(*options)

type options struct {
	logger logging.Logger
	clock  func() time.Time
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(log logging.Logger) Option {
	return func(o *options) { o.logger = log }
}

// WithClock fixes the clock the ledger and report generator use for today.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// NewContainer opens the database described by cfg and wires every service
// on top of it. The schema is not migrated; call Migrate for that.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	// Create logger first as it's needed by other components
	logger := o.logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	delimiter, err := validation.IsValidDelimiter(cfg.Export.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("invalid export configuration: %w", err)
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	agg := aggregate.NewEngine(db, logger)
	st := store.New(db, logger)
	c := &Container{
		logger:    logger,
		config:    cfg,
		db:        db,
		clock:     o.clock,
		store:     st,
		orgs:      scope.NewService(db, logger),
		ledger:    ledger.NewEngine(db, logger, ledger.WithClock(o.clock)),
		aggregate: agg,
		reports:   report.NewGenerator(db, logger, agg, report.WithClock(o.clock)),
		exporter:  export.NewExporter(st, agg, logger, export.WithDelimiter(delimiter)),
	}

	logger.Info("Container initialized successfully",
		logging.Field{Key: "driver", Value: cfg.Database.Driver})
	return c, nil
}

// Migrate brings the schema up to date.
func (c *Container) Migrate() error {
	if err := database.AutoMigrate(c.db); err != nil {
		return err
	}
	c.logger.Info("Database schema migrated")
	return nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// Today returns the current calendar day according to the container clock.
func (c *Container) Today() time.Time {
	return c.clock()
}

// GetStore returns the entity store.
func (c *Container) GetStore() *store.Store {
	return c.store
}

// GetOrganizations returns the organization and project membership service.
func (c *Container) GetOrganizations() *scope.Service {
	return c.orgs
}

// GetLedger returns the ledger mutation engine.
func (c *Container) GetLedger() *ledger.Engine {
	return c.ledger
}

// GetAggregate returns the aggregation engine.
func (c *Container) GetAggregate() *aggregate.Engine {
	return c.aggregate
}

// GetReports returns the report generator.
func (c *Container) GetReports() *report.Generator {
	return c.reports
}

// GetExporter returns the transaction exporter.
func (c *Container) GetExporter() *export.Exporter {
	return c.exporter
}

// Close releases the database connection pool.
func (c *Container) Close() error {
	if err := database.Close(c.db); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	c.logger.Info("Container closed")
	return nil
}
