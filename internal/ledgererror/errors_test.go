package ledgererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"kind only", &Error{Kind: KindForbidden}, "forbidden"},
		{"with op", New(KindInvalidAmount, "ledger.Deposit", "amount must be positive"), "ledger.Deposit: amount must be positive"},
		{"with cause", &Error{Kind: KindPersistence, Op: "store.Save", Msg: "persistence failure", Err: errors.New("disk full")}, "store.Save: persistence failure: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(KindInsufficientFunds, "ledger.Withdraw", "balance too low"))
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.False(t, errors.Is(err, ErrInvalidAmount))
	assert.Equal(t, KindInsufficientFunds, KindOf(err))
	assert.Equal(t, "balance too low", Message(err))
}

func TestStore(t *testing.T) {
	assert.NoError(t, Store("op", "account", nil))

	nf := Store("ledger.Deposit", "account", gorm.ErrRecordNotFound)
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.Equal(t, "account not found", Message(nf))

	classified := New(KindForbidden, "scope", "no")
	assert.Same(t, classified, Store("op", "x", classified))

	raw := Store("op", "account", errors.New("connection refused"))
	assert.Equal(t, KindPersistence, KindOf(raw))
	assert.Equal(t, "persistence failure", Message(raw))
	assert.Contains(t, raw.Error(), "connection refused")
}

func TestUnclassified(t *testing.T) {
	err := errors.New("raw")
	assert.Equal(t, KindPersistence, KindOf(err))
	assert.Equal(t, "internal error", Message(err))
}
