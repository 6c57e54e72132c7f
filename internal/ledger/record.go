package ledger

import (
	"encoding/binary"
	"math"

	"github.com/roach88/bookstore/internal/model"
)

// Record field bounds.
const (
	MaxUserIDLen  = model.MaxUserFieldLen
	MaxCommandLen = 1024

	tradeSlotSize = 16
	cmdSlotSize   = 8 + 32 + MaxCommandLen
	cmdUserOffset = 8
	cmdTextOffset = 8 + 32
)

// TradeRecord is one money movement. Amount is in minor units and never negative;
// Expense gives the direction.
type TradeRecord struct {
	Expense bool  `json:"expense"`
	Amount  int64 `json:"amount"`
}

// Income returns an income trade of amount.
func Income(amount int64) TradeRecord { return TradeRecord{Amount: amount} }

// Expense returns an expense trade of amount.
func Expense(amount int64) TradeRecord { return TradeRecord{Expense: true, Amount: amount} }

// Totals accumulates trades by direction.
type Totals struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
}

// Add folds r into t. A sum that would leave int64 fails with
// ErrInvalidQuantity and leaves t unchanged.
func (t *Totals) Add(r TradeRecord) error {
	sum := &t.Income
	if r.Expense {
		sum = &t.Expense
	}
	if r.Amount > math.MaxInt64-*sum {
		return model.Errorf(model.CodeInvalidQuantity, "%s total %d + %d overflows", r.direction(), *sum, r.Amount)
	}
	*sum += r.Amount
	return nil
}

// Net returns income minus expense.
func (t Totals) Net() int64 { return t.Income - t.Expense }

// CmdRecord is one successful command and the user who ran it.
type CmdRecord struct {
	UserID  string `json:"user_id"`
	Command string `json:"command"`
}

// TradeEntry is a trade with its 1-based sequence number.
type TradeEntry struct {
	Seq int64 `json:"seq"`
	TradeRecord
}

// CmdEntry is a command record with its 1-based sequence number.
type CmdEntry struct {
	Seq int64 `json:"seq"`
	CmdRecord
}

func (r TradeRecord) direction() string {
	if r.Expense {
		return "expense"
	}
	return "income"
}

func (r TradeRecord) validate() error {
	if r.Amount < 0 {
		return model.Errorf(model.CodeValidationFailed, "negative trade amount %d", r.Amount)
	}
	return nil
}

func (r TradeRecord) encode() []byte {
	slot := make([]byte, tradeSlotSize)
	if r.Expense {
		slot[0] = 1
	}
	binary.LittleEndian.PutUint64(slot[8:], uint64(r.Amount))
	return slot
}

func decodeTrade(slot []byte) TradeRecord {
	return TradeRecord{
		Expense: slot[0] == 1,
		Amount:  int64(binary.LittleEndian.Uint64(slot[8:])),
	}
}

func (r CmdRecord) validate() error {
	if len(r.UserID) > MaxUserIDLen {
		return model.Errorf(model.CodeValidationFailed, "user id longer than %d bytes", MaxUserIDLen)
	}
	if len(r.Command) > MaxCommandLen {
		return model.Errorf(model.CodeValidationFailed, "command longer than %d bytes", MaxCommandLen)
	}
	return nil
}

func (r CmdRecord) encode() []byte {
	slot := make([]byte, cmdSlotSize)
	binary.LittleEndian.PutUint16(slot[0:], uint16(len(r.UserID)))
	binary.LittleEndian.PutUint16(slot[2:], uint16(len(r.Command)))
	copy(slot[cmdUserOffset:], r.UserID)
	copy(slot[cmdTextOffset:], r.Command)
	return slot
}

func decodeCmd(slot []byte) (CmdRecord, error) {
	userLen := int(binary.LittleEndian.Uint16(slot[0:]))
	cmdLen := int(binary.LittleEndian.Uint16(slot[2:]))
	if userLen > MaxUserIDLen || cmdLen > MaxCommandLen {
		return CmdRecord{}, model.Errorf(model.CodeValidationFailed, "corrupt command slot (%d, %d)", userLen, cmdLen)
	}
	return CmdRecord{
		UserID:  string(slot[cmdUserOffset : cmdUserOffset+userLen]),
		Command: string(slot[cmdTextOffset : cmdTextOffset+cmdLen]),
	}, nil
}
