package ledger

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/roach88/bookstore/internal/model"
)

// Ledger is the pair of append-only trade and command histories.
type Ledger struct {
	trades *slotFile
	cmds   *slotFile
	totals Totals // every recorded trade
}

type options struct {
	sync bool
}

// Option configures Open.
type Option func(*options)

// SyncWrites makes every append fsync before returning.
func SyncWrites(enabled bool) Option {
	return func(o *options) { o.sync = enabled }
}

// Open opens or creates <prefix>_trade.bin and <prefix>_cmd.bin.
func Open(prefix string, opts ...Option) (*Ledger, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	trades, err := openSlotFile(prefix+"_trade.bin", tradeSlotSize, o.sync)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	cmds, err := openSlotFile(prefix+"_cmd.bin", cmdSlotSize, o.sync)
	if err != nil {
		trades.close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	l := &Ledger{trades: trades, cmds: cmds}
	if l.totals, err = l.fold(1, trades.count); err != nil {
		l.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	slog.Debug("ledger opened", "prefix", prefix, "trades", trades.count, "commands", cmds.count)
	return l, nil
}

// Close closes both files.
func (l *Ledger) Close() error {
	return errors.Join(l.trades.close(), l.cmds.close())
}

// Admit reports whether r can be appended: it must be well formed and keep
// the all-time totals within int64.
func (l *Ledger) Admit(r TradeRecord) error {
	_, err := l.admit(r)
	return err
}

func (l *Ledger) admit(r TradeRecord) (Totals, error) {
	if err := r.validate(); err != nil {
		return Totals{}, err
	}
	next := l.totals
	if err := next.Add(r); err != nil {
		return Totals{}, err
	}
	return next, nil
}

// AppendTrade records a trade and returns its sequence number. A trade the
// totals cannot absorb is rejected with ErrInvalidQuantity and not written.
func (l *Ledger) AppendTrade(r TradeRecord) (int64, error) {
	next, err := l.admit(r)
	if err != nil {
		return 0, err
	}
	seq, err := l.trades.append(r.encode())
	if err != nil {
		return 0, fmt.Errorf("append trade: %w", err)
	}
	l.totals = next
	return seq, nil
}

// AppendCommand records a command and returns its sequence number.
func (l *Ledger) AppendCommand(r CmdRecord) (int64, error) {
	if err := r.validate(); err != nil {
		return 0, err
	}
	seq, err := l.cmds.append(r.encode())
	if err != nil {
		return 0, fmt.Errorf("append command: %w", err)
	}
	return seq, nil
}

// TradeCount returns the number of trades recorded.
func (l *Ledger) TradeCount() int64 { return l.trades.count }

// CommandCount returns the number of commands recorded.
func (l *Ledger) CommandCount() int64 { return l.cmds.count }

// Trade returns trade seq (1-based).
func (l *Ledger) Trade(seq int64) (TradeRecord, error) {
	if seq < 1 || seq > l.trades.count {
		return TradeRecord{}, model.Errorf(model.CodeOutOfRange, "trade %d of %d", seq, l.trades.count)
	}
	slot, err := l.trades.read(seq)
	if err != nil {
		return TradeRecord{}, err
	}
	return decodeTrade(slot), nil
}

// Command returns command record seq (1-based).
func (l *Ledger) Command(seq int64) (CmdRecord, error) {
	if seq < 1 || seq > l.cmds.count {
		return CmdRecord{}, model.Errorf(model.CodeOutOfRange, "command %d of %d", seq, l.cmds.count)
	}
	slot, err := l.cmds.read(seq)
	if err != nil {
		return CmdRecord{}, err
	}
	return decodeCmd(slot)
}

// SumTrades folds the last n trades. n == 0 gives zero totals; n beyond the
// recorded count fails with ErrOutOfRange.
func (l *Ledger) SumTrades(n int64) (Totals, error) {
	var t Totals
	if n < 0 {
		return t, model.Errorf(model.CodeValidationFailed, "negative window %d", n)
	}
	count := l.trades.count
	if n > count {
		return t, model.Errorf(model.CodeOutOfRange, "window %d exceeds %d trades", n, count)
	}
	return l.fold(count-n+1, count)
}

// fold sums trades from..to inclusive.
func (l *Ledger) fold(from, to int64) (Totals, error) {
	var t Totals
	for seq := from; seq <= to; seq++ {
		r, err := l.Trade(seq)
		if err != nil {
			return Totals{}, err
		}
		if err := t.Add(r); err != nil {
			return Totals{}, fmt.Errorf("trade %d: %w", seq, err)
		}
	}
	return t, nil
}

// SumAllTrades folds every trade.
func (l *Ledger) SumAllTrades() (Totals, error) {
	return l.totals, nil
}

// Trades yields every trade in insertion order.
func (l *Ledger) Trades() iter.Seq2[TradeEntry, error] {
	return func(yield func(TradeEntry, error) bool) {
		count := l.trades.count
		for seq := int64(1); seq <= count; seq++ {
			r, err := l.Trade(seq)
			if err != nil {
				yield(TradeEntry{}, err)
				return
			}
			if !yield(TradeEntry{Seq: seq, TradeRecord: r}, nil) {
				return
			}
		}
	}
}

// Commands yields every command record in insertion order.
func (l *Ledger) Commands() iter.Seq2[CmdEntry, error] {
	return l.CommandsBy("")
}

// CommandsBy yields the command records of userID in insertion order.
// An empty userID matches every record.
func (l *Ledger) CommandsBy(userID string) iter.Seq2[CmdEntry, error] {
	return func(yield func(CmdEntry, error) bool) {
		count := l.cmds.count
		for seq := int64(1); seq <= count; seq++ {
			r, err := l.Command(seq)
			if err != nil {
				yield(CmdEntry{}, err)
				return
			}
			if userID != "" && r.UserID != userID {
				continue
			}
			if !yield(CmdEntry{Seq: seq, CmdRecord: r}, nil) {
				return
			}
		}
	}
}
