package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/bookstore/internal/ledger"
	"github.com/roach88/bookstore/internal/model"
	"github.com/roach88/bookstore/internal/shell"
)

// printer groups the integer part of report amounts.
var printer = message.NewPrinter(language.English)

// ReportOptions holds flags for the report subcommands.
type ReportOptions struct {
	*RootOptions
	Last int64  // finance: only the most recent N trades, when set
	User string // commands: only records by this user
}

// TradeLine is one trade ledger record.
type TradeLine struct {
	Seq       int64  `json:"seq"`
	Direction string `json:"direction"`
	Amount    string `json:"amount"`
}

// FinanceReport lists trades with their totals.
type FinanceReport struct {
	Trades  []TradeLine `json:"trades"`
	Income  string      `json:"income"`
	Expense string      `json:"expense"`
	Net     string      `json:"net"`
}

func (r FinanceReport) String() string {
	var b strings.Builder
	for _, t := range r.Trades {
		fmt.Fprintf(&b, "%d. %s %s\n", t.Seq, t.Direction, t.Amount)
	}
	fmt.Fprintf(&b, "Total: + %s - %s (net %s)", r.Income, r.Expense, r.Net)
	return b.String()
}

// CommandLine is one command ledger record.
type CommandLine struct {
	Seq     int64  `json:"seq"`
	User    string `json:"user"`
	Command string `json:"command"`
}

// CommandReport lists command records.
type CommandReport struct {
	Commands []CommandLine `json:"commands"`
}

func (r CommandReport) String() string {
	if len(r.Commands) == 0 {
		return "No commands recorded."
	}
	lines := make([]string, len(r.Commands))
	for i, c := range r.Commands {
		lines[i] = fmt.Sprintf("%d. [%s] %s", c.Seq, c.User, c.Command)
	}
	return strings.Join(lines, "\n")
}

// NewReportCommand creates the report command and its subcommands.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print ledger reports",
		Long: `Print read-only reports from the trade and command ledgers.

Examples:
  bookstore report finance
  bookstore report finance --last 10 --format json
  bookstore report commands --user root`,
	}

	finance := &cobra.Command{
		Use:           "finance",
		Short:         "List trades with income and expense totals",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFinanceReport(cmd, opts)
		},
	}
	finance.Flags().Int64Var(&opts.Last, "last", 0, "only the most recent N trades (all when unset)")

	commands := &cobra.Command{
		Use:           "commands",
		Short:         "List recorded commands",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommandReport(cmd, opts)
		},
	}
	commands.Flags().StringVar(&opts.User, "user", "", "only commands run by this user id")

	cmd.AddCommand(finance, commands)
	return cmd
}

func runFinanceReport(cmd *cobra.Command, opts *ReportOptions) error {
	a, err := opts.openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := opts.formatter(cmd)
	var report FinanceReport
	switch {
	case !cmd.Flags().Changed("last"):
		report, err = buildFinanceReport(a.Ledger, -1)
	case opts.Last < 0:
		err = model.Errorf(model.CodeValidationFailed, "--last must not be negative")
	default:
		report, err = buildFinanceReport(a.Ledger, opts.Last)
	}
	if err != nil {
		if opts.Format == "json" {
			out.Error(err, map[string]int64{
				"last":   opts.Last,
				"trades": a.Ledger.TradeCount(),
			})
		}
		return WrapExitError(ExitFailure, "finance report failed", err)
	}
	return out.Success(report)
}

// buildFinanceReport covers the last n trades, or every trade when n is negative.
func buildFinanceReport(l *ledger.Ledger, n int64) (FinanceReport, error) {
	var (
		totals ledger.Totals
		err    error
	)
	if n < 0 {
		totals, err = l.SumAllTrades()
	} else {
		totals, err = l.SumTrades(n)
	}
	if err != nil {
		return FinanceReport{}, err
	}

	first := int64(1)
	if n >= 0 {
		first = l.TradeCount() - n + 1
	}
	report := FinanceReport{Trades: []TradeLine{}}
	for e, err := range l.Trades() {
		if err != nil {
			return FinanceReport{}, err
		}
		if e.Seq < first {
			continue
		}
		report.Trades = append(report.Trades, TradeLine{
			Seq:       e.Seq,
			Direction: shell.TradeDirection(e.TradeRecord),
			Amount:    formatAmount(e.Amount),
		})
	}
	report.Income = formatAmount(totals.Income)
	report.Expense = formatAmount(totals.Expense)
	report.Net = formatAmount(totals.Net())
	return report, nil
}

func runCommandReport(cmd *cobra.Command, opts *ReportOptions) error {
	a, err := opts.openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	report := CommandReport{Commands: []CommandLine{}}
	for e, err := range a.Ledger.CommandsBy(opts.User) {
		if err != nil {
			return WrapExitError(ExitFailure, "command report failed", err)
		}
		report.Commands = append(report.Commands, CommandLine{
			Seq:     e.Seq,
			User:    e.UserID,
			Command: e.Command,
		})
	}
	out := opts.formatter(cmd)
	out.VerboseLog("%d of %d commands", len(report.Commands), a.Ledger.CommandCount())
	return out.Success(report)
}

// formatAmount renders minor units with a grouped integer part, e.g. "1,234.50".
func formatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return sign + printer.Sprintf("%d", minor/100) + fmt.Sprintf(".%02d", minor%100)
}
