package container

import (
	"context"
	"testing"
	"time"

	"fjacquet/fintrack/internal/config"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(name string) *config.Config {
	cfg := config.Default()
	cfg.Database.DSN = "file:" + name + "?mode=memory&cache=shared"
	return cfg
}

func TestNewContainer(t *testing.T) {
	unsupported := config.Default()
	unsupported.Database.Driver = "mysql"
	quoted := memoryConfig("TestNewContainerQuoted")
	quoted.Export.Delimiter = `"`

	tests := []struct {
		name     string
		config   *config.Config
		errorMsg string
	}{
		{name: "nil config", config: nil, errorMsg: "configuration cannot be nil"},
		{name: "unsupported driver", config: unsupported, errorMsg: "unsupported database driver"},
		{name: "quote delimiter", config: quoted, errorMsg: "invalid export configuration: invalid delimiter"},
		{name: "in-memory sqlite", config: memoryConfig("TestNewContainer")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container, err := NewContainer(tt.config, WithLogger(logging.NewMockLogger()))
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, container)
				return
			}
			require.NoError(t, err)
			defer func() { _ = container.Close() }()

			assert.NotNil(t, container.GetStore())
			assert.NotNil(t, container.GetOrganizations())
			assert.NotNil(t, container.GetLedger())
			assert.NotNil(t, container.GetAggregate())
			assert.NotNil(t, container.GetReports())
			assert.NotNil(t, container.GetExporter())
			assert.Equal(t, tt.config, container.GetConfig())
		})
	}
}

func TestContainer_WiredServices(t *testing.T) {
	log := logging.NewMockLogger()
	today := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)
	c, err := NewContainer(memoryConfig("TestContainer_WiredServices"),
		WithLogger(log), WithClock(func() time.Time { return today }))
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	require.NoError(t, c.Migrate())

	ctx := context.Background()
	user, err := c.GetStore().CreateUser(ctx, "alice", "")
	require.NoError(t, err)
	acc, err := c.GetStore().CreateAccount(ctx, user.ID, store.NewAccount{Title: "Main", Type: models.AccountChecking, OpeningBalance: decimal.NewFromInt(100)})
	require.NoError(t, err)

	_, err = c.GetLedger().Deposit(ctx, user.ID, acc.ID, decimal.NewFromInt(50))
	require.NoError(t, err)

	dash, err := c.GetAggregate().Dashboard(ctx, user.ID, c.Today())
	require.NoError(t, err)
	assert.Equal(t, "150.00", dash.TotalBalance.String())
	assert.Equal(t, "2024-05-01", dash.Period.StartDate)

	assert.True(t, log.HasEntry("INFO", "Container initialized successfully"))
	assert.True(t, log.HasEntry("INFO", "Database schema migrated"))
}

func TestContainer_Close(t *testing.T) {
	log := logging.NewMockLogger()
	c, err := NewContainer(memoryConfig("TestContainer_Close"), WithLogger(log))
	require.NoError(t, err)

	assert.NoError(t, c.Close())
	assert.True(t, log.HasEntry("INFO", "Container closed"))
}
