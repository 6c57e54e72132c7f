package shell

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/bookstore/internal/ledger"
	"github.com/roach88/bookstore/internal/model"
)

const rule = "--------------------"

func runReport(_ context.Context, s *Shell, args []string) error {
	switch args[0] {
	case "finance":
		if _, err := s.stack.Authorize(model.Root); err != nil {
			return err
		}
		return writeFinanceReport(s.out, s.ledger)
	case "employee":
		if _, err := s.stack.Authorize(model.Root); err != nil {
			return err
		}
		return writeCommandReport(s.out, s.ledger, "")
	case "myself":
		if _, err := s.stack.Authorize(model.Worker); err != nil {
			return err
		}
		return writeCommandReport(s.out, s.ledger, s.stack.Top().User.ID)
	}
	return model.Errorf(model.CodeValidationFailed, "unknown report %q", args[0])
}

func runLog(_ context.Context, s *Shell, _ []string) error {
	if _, err := s.stack.Authorize(model.Root); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s Finance Report %s\n", rule, rule)
	if err := writeFinanceReport(s.out, s.ledger); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "\n%s System Logs %s\n", rule, rule)
	return writeCommandReport(s.out, s.ledger, "")
}

func writeBooks(w io.Writer, books []model.Book) error {
	if len(books) == 0 {
		_, err := fmt.Fprintln(w)
		return err
	}
	var sb strings.Builder
	for _, b := range books {
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\t%s\t%d\n",
			b.ISBN, b.Name, b.Author, b.Keyword, model.FormatPrice(b.Price), b.Quantity)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func formatTotals(t ledger.Totals) string {
	return fmt.Sprintf("+ %s - %s", model.FormatPrice(t.Income), model.FormatPrice(t.Expense))
}

// TradeDirection names a trade's direction for reports.
func TradeDirection(r ledger.TradeRecord) string {
	if r.Expense {
		return "expense"
	}
	return "income"
}

func writeFinanceReport(w io.Writer, l *ledger.Ledger) error {
	for e, err := range l.Trades() {
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d. %s %s\n", e.Seq, TradeDirection(e.TradeRecord), model.FormatPrice(e.Amount))
	}
	totals, err := l.SumAllTrades()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Total: %s\n", formatTotals(totals))
	return err
}

func writeCommandReport(w io.Writer, l *ledger.Ledger, userID string) error {
	for e, err := range l.CommandsBy(userID) {
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d. [%s] %s\n", e.Seq, e.UserID, e.Command)
	}
	return nil
}
