package ledger

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bookstore/internal/model"
)

func openTestLedger(t *testing.T) (*Ledger, string) {
	t.Helper()
	prefix := filepath.Join(t.TempDir(), "log")
	l, err := Open(prefix)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, prefix
}

func TestOpen_CreatesBothFiles(t *testing.T) {
	_, prefix := openTestLedger(t)

	for _, suffix := range []string{"_trade.bin", "_cmd.bin"} {
		info, err := os.Stat(prefix + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), "count slot written on creation")
	}
}

func TestAppend_DenseSequenceNumbers(t *testing.T) {
	l, _ := openTestLedger(t)

	for want := int64(1); want <= 3; want++ {
		seq, err := l.AppendTrade(Income(100 * want))
		require.NoError(t, err)
		assert.Equal(t, want, seq)
	}
	seq, err := l.AppendCommand(CmdRecord{UserID: "root", Command: "su root sjtu"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq, "each history numbers independently")

	assert.Equal(t, int64(3), l.TradeCount())
	assert.Equal(t, int64(1), l.CommandCount())
}

func TestAppend_SlotLayout(t *testing.T) {
	l, prefix := openTestLedger(t)
	_, err := l.AppendTrade(Expense(0x0102))
	require.NoError(t, err)

	raw, err := os.ReadFile(prefix + "_trade.bin")
	require.NoError(t, err)
	require.Len(t, raw, 2*tradeSlotSize)
	assert.Equal(t, byte(1), raw[0], "count in slot 0")
	assert.Equal(t, byte(1), raw[tradeSlotSize], "expense flag")
	assert.Equal(t, []byte{0x02, 0x01}, raw[tradeSlotSize+8:tradeSlotSize+10])
}

func TestReopen_KeepsRecords(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "log")
	l, err := Open(prefix, SyncWrites(true))
	require.NoError(t, err)
	_, err = l.AppendTrade(Income(500))
	require.NoError(t, err)
	_, err = l.AppendCommand(CmdRecord{UserID: "w", Command: "import 5 10.00"})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l, err = Open(prefix)
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, int64(1), l.TradeCount())
	r, err := l.Trade(1)
	require.NoError(t, err)
	assert.Equal(t, Income(500), r)

	c, err := l.Command(1)
	require.NoError(t, err)
	assert.Equal(t, CmdRecord{UserID: "w", Command: "import 5 10.00"}, c)

	seq, err := l.AppendTrade(Expense(1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
}

func TestOpen_RejectsTruncatedFile(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "log")
	l, err := Open(prefix)
	require.NoError(t, err)
	_, err = l.AppendTrade(Income(1))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	require.NoError(t, os.Truncate(prefix+"_trade.bin", tradeSlotSize+4))

	_, err = Open(prefix)
	assert.Error(t, err)
}

func TestRandomAccess_OutOfRange(t *testing.T) {
	l, _ := openTestLedger(t)
	_, err := l.AppendTrade(Income(1))
	require.NoError(t, err)

	_, err = l.Trade(0)
	assert.ErrorIs(t, err, model.ErrOutOfRange)
	_, err = l.Trade(2)
	assert.ErrorIs(t, err, model.ErrOutOfRange)
	_, err = l.Command(1)
	assert.ErrorIs(t, err, model.ErrOutOfRange)
}

func TestAppend_Rejections(t *testing.T) {
	l, _ := openTestLedger(t)

	_, err := l.AppendTrade(TradeRecord{Amount: -1})
	assert.ErrorIs(t, err, model.ErrValidationFailed)

	_, err = l.AppendCommand(CmdRecord{UserID: strings.Repeat("u", 31), Command: "x"})
	assert.ErrorIs(t, err, model.ErrValidationFailed)

	_, err = l.AppendCommand(CmdRecord{UserID: "u", Command: strings.Repeat("c", 1025)})
	assert.ErrorIs(t, err, model.ErrValidationFailed)

	assert.Zero(t, l.TradeCount())
	assert.Zero(t, l.CommandCount())
}

func TestCommand_MaximumLengths(t *testing.T) {
	l, _ := openTestLedger(t)
	rec := CmdRecord{UserID: strings.Repeat("u", 30), Command: strings.Repeat("c", 1024)}

	_, err := l.AppendCommand(rec)
	require.NoError(t, err)
	got, err := l.Command(1)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestSumTrades(t *testing.T) {
	l, _ := openTestLedger(t)
	for _, r := range []TradeRecord{Income(1000), Expense(300), Income(250), Expense(50)} {
		_, err := l.AppendTrade(r)
		require.NoError(t, err)
	}

	zero, err := l.SumTrades(0)
	require.NoError(t, err)
	assert.Equal(t, Totals{}, zero)

	last2, err := l.SumTrades(2)
	require.NoError(t, err)
	assert.Equal(t, Totals{Income: 250, Expense: 50}, last2)

	all, err := l.SumTrades(4)
	require.NoError(t, err)
	assert.Equal(t, Totals{Income: 1250, Expense: 350}, all)
	assert.Equal(t, int64(900), all.Net())

	viaAll, err := l.SumAllTrades()
	require.NoError(t, err)
	assert.Equal(t, all, viaAll)

	_, err = l.SumTrades(5)
	assert.ErrorIs(t, err, model.ErrOutOfRange)

	_, err = l.SumTrades(-1)
	assert.ErrorIs(t, err, model.ErrValidationFailed)
}

func TestTotals_Add(t *testing.T) {
	var totals Totals
	require.NoError(t, totals.Add(Income(math.MaxInt64-1)))
	require.NoError(t, totals.Add(Expense(math.MaxInt64)))
	require.NoError(t, totals.Add(Income(1)))
	assert.Equal(t, Totals{Income: math.MaxInt64, Expense: math.MaxInt64}, totals)

	err := totals.Add(Income(1))
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	err = totals.Add(Expense(1))
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	assert.Equal(t, Totals{Income: math.MaxInt64, Expense: math.MaxInt64}, totals, "failed adds leave totals alone")
}

func TestAppendTrade_TotalsOverflowRejected(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "log")
	l, err := Open(prefix)
	require.NoError(t, err)

	half := int64(math.MaxInt64/2 + 1)
	_, err = l.AppendTrade(Income(half))
	require.NoError(t, err)
	_, err = l.AppendTrade(Expense(half))
	require.NoError(t, err, "directions sum independently")

	assert.ErrorIs(t, l.Admit(Income(half)), model.ErrInvalidQuantity)
	_, err = l.AppendTrade(Income(half))
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	_, err = l.AppendTrade(Expense(half))
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	assert.Equal(t, int64(2), l.TradeCount(), "rejected trades are not written")

	totals, err := l.SumAllTrades()
	require.NoError(t, err)
	assert.Equal(t, Totals{Income: half, Expense: half}, totals)
	require.NoError(t, l.Close())

	l, err = Open(prefix)
	require.NoError(t, err)
	defer l.Close()
	_, err = l.AppendTrade(Income(half))
	assert.ErrorIs(t, err, model.ErrInvalidQuantity, "totals are rebuilt on open")
	_, err = l.AppendTrade(Income(half - 2))
	require.NoError(t, err)

	totals, err = l.SumAllTrades()
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), totals.Income)
}

func TestSumAllTrades_Empty(t *testing.T) {
	l, _ := openTestLedger(t)
	totals, err := l.SumAllTrades()
	require.NoError(t, err)
	assert.Equal(t, Totals{}, totals)
}

func TestTrades_IterateInOrderAndRestart(t *testing.T) {
	l, _ := openTestLedger(t)
	_, err := l.AppendTrade(Income(1))
	require.NoError(t, err)
	_, err = l.AppendTrade(Expense(2))
	require.NoError(t, err)

	collect := func() []TradeEntry {
		var out []TradeEntry
		for e, err := range l.Trades() {
			require.NoError(t, err)
			out = append(out, e)
		}
		return out
	}

	first := collect()
	assert.Equal(t, []TradeEntry{{Seq: 1, TradeRecord: Income(1)}, {Seq: 2, TradeRecord: Expense(2)}}, first)

	_, err = l.AppendTrade(Income(3))
	require.NoError(t, err)
	assert.Len(t, collect(), 3, "a restarted iterator sees new records")
}

func TestTrades_EarlyBreak(t *testing.T) {
	l, _ := openTestLedger(t)
	for i := 0; i < 5; i++ {
		_, err := l.AppendTrade(Income(int64(i)))
		require.NoError(t, err)
	}

	n := 0
	for range l.Trades() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestCommandsBy(t *testing.T) {
	l, _ := openTestLedger(t)
	for _, r := range []CmdRecord{
		{UserID: "root", Command: "su root sjtu"},
		{UserID: "w", Command: "select 978-1"},
		{UserID: "root", Command: "show"},
		{UserID: "w", Command: "import 5 10.00"},
	} {
		_, err := l.AppendCommand(r)
		require.NoError(t, err)
	}

	var seqs []int64
	for e, err := range l.CommandsBy("w") {
		require.NoError(t, err)
		assert.Equal(t, "w", e.UserID)
		seqs = append(seqs, e.Seq)
	}
	assert.Equal(t, []int64{2, 4}, seqs)

	n := 0
	for _, err := range l.Commands() {
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 4, n, "empty user id is a wildcard")

	for range l.CommandsBy("nobody") {
		t.Fatal("no records expected")
	}
}
