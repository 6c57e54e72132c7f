package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"

	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/bookstore/internal/account"
	"github.com/roach88/bookstore/internal/app"
	"github.com/roach88/bookstore/internal/config"
	"github.com/roach88/bookstore/internal/model"
	"github.com/roach88/bookstore/internal/shell"
)

// invalid is what the shell prints for any rejected command.
const invalid = "Invalid\n"

// Harness runs one scenario against its own data directory.
type Harness struct {
	cfg    config.Config
	ids    *account.SequentialGenerator
	app    *app.App
	shell  *shell.Shell
	out    bytes.Buffer
	closed bool
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh temporary data directory with a SQLite
// store, a ledger, the default root account, the cheapest bcrypt cost and
// sequential session IDs, so results are reproducible.
//
// Execution flow:
// 1. Create the data directory and open the components
// 2. Run each step, recording what it printed
// 3. Compare printed output with the step's expect
// 4. Evaluate assertions against the final state
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "bookstore-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	defer os.RemoveAll(dir)

	cfg, err := config.Load("")
	if err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	cfg.DataDir = dir
	cfg.BcryptCost = bcrypt.MinCost
	cfg.SyncWrites = false

	h := &Harness{cfg: cfg, ids: &account.SequentialGenerator{}}
	if err := h.open(ctx); err != nil {
		return nil, err
	}
	defer h.close()

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	for _, msg := range h.evaluateAssertions(ctx, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) open(ctx context.Context) error {
	a, err := app.Open(ctx, h.cfg, app.WithSessionIDs(h.ids))
	if err != nil {
		return fmt.Errorf("failed to open bookstore: %w", err)
	}
	h.app = a
	h.shell = a.Shell(&h.out)
	h.closed = false
	return nil
}

func (h *Harness) close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	return h.app.Close()
}

// executeSteps runs every step. A quit ends the session; any later step
// other than a restart is a scenario error.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	quit := false
	for i, step := range steps {
		if step.Restart {
			if err := h.close(); err != nil {
				return fmt.Errorf("steps[%d]: close: %w", i, err)
			}
			if err := h.open(ctx); err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
			quit = false
			result.Steps = append(result.Steps, StepResult{Restart: true})
			continue
		}
		if quit {
			result.AddError(fmt.Sprintf("steps[%d]: %q runs after quit", i, step.Input))
			continue
		}

		h.out.Reset()
		sr := StepResult{Input: step.Input}
		err := h.shell.Execute(ctx, step.Input)
		switch {
		case errors.Is(err, shell.ErrQuit):
			quit = true
		case err != nil:
			h.out.WriteString(invalid)
			sr.Code = string(model.CodeOf(err))
		}
		sr.Output = h.out.String()
		result.Steps = append(result.Steps, sr)

		if step.Expect != nil && *step.Expect != sr.Output {
			result.AddError(fmt.Sprintf("steps[%d] %q: expected output %q, got %q",
				i, step.Input, *step.Expect, sr.Output))
		}
	}
	return nil
}

// evaluateAssertions checks the final state and returns one message per
// failed assertion.
func (h *Harness) evaluateAssertions(ctx context.Context, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := h.evaluate(ctx, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d] %s: %v", i, a.Type, err))
		}
	}
	return failures
}

func (h *Harness) evaluate(ctx context.Context, a Assertion) error {
	switch a.Type {
	case AssertBook:
		book, err := h.app.Catalog.LookupByISBN(ctx, a.ISBN)
		if err != nil {
			return err
		}
		return matchBook(book, a.Expect)
	case AssertBookAbsent:
		_, err := h.app.Catalog.LookupByISBN(ctx, a.ISBN)
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("record %q exists", a.ISBN)
	case AssertTradeCount:
		if n := h.app.Ledger.TradeCount(); n != a.Count {
			return fmt.Errorf("expected %d trades, got %d", a.Count, n)
		}
	case AssertCommandCount:
		if n := h.app.Ledger.CommandCount(); n != a.Count {
			return fmt.Errorf("expected %d commands, got %d", a.Count, n)
		}
	case AssertTotals:
		totals, err := h.app.Ledger.SumAllTrades()
		if err != nil {
			return err
		}
		got := fmt.Sprintf("+ %s - %s", model.FormatPrice(totals.Income), model.FormatPrice(totals.Expense))
		want := fmt.Sprintf("+ %s - %s", a.Income, a.Expense)
		if got != want {
			return fmt.Errorf("expected %s, got %s", want, got)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// matchBook compares a subset of fields. The book is round-tripped through
// JSON so expected values use the same names and number handling as the
// scenario file.
func matchBook(book model.Book, expect map[string]any) error {
	data, err := json.Marshal(book)
	if err != nil {
		return err
	}
	var actual map[string]any
	if err := json.Unmarshal(data, &actual); err != nil {
		return err
	}
	for field, want := range expect {
		got, ok := actual[field]
		if !ok {
			return fmt.Errorf("unknown field %q", field)
		}
		if !valuesEqual(got, want) {
			return fmt.Errorf("field %q: expected %v, got %v", field, want, got)
		}
	}
	return nil
}

// valuesEqual compares a JSON-decoded value with a YAML-decoded one.
// YAML integers decode as int, JSON numbers as float64.
func valuesEqual(actual, expected any) bool {
	if a, ok := actual.(float64); ok {
		switch e := expected.(type) {
		case int:
			return a == float64(e)
		case int64:
			return a == float64(e)
		case float64:
			return a == e
		}
		return false
	}
	return reflect.DeepEqual(actual, expected)
}
