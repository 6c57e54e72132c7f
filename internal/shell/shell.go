package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/bookstore/internal/account"
	"github.com/roach88/bookstore/internal/catalog"
	"github.com/roach88/bookstore/internal/ledger"
	"github.com/roach88/bookstore/internal/model"
)

// ErrQuit is returned by Execute for quit and exit.
var ErrQuit = errors.New("quit")

// mask replaces password arguments in recorded commands.
const mask = "******"

// Deps are the components a shell dispatches to.
type Deps struct {
	Catalog   *catalog.Catalog
	Directory *account.Directory
	Stack     *account.Stack
	Ledger    *ledger.Ledger
	Out       io.Writer
}

// Shell executes command lines against one session stack.
type Shell struct {
	catalog *catalog.Catalog
	dir     *account.Directory
	stack   *account.Stack
	ledger  *ledger.Ledger
	out     io.Writer
}

// New creates a shell.
func New(d Deps) *Shell {
	out := d.Out
	if out == nil {
		out = io.Discard
	}
	return &Shell{catalog: d.Catalog, dir: d.Directory, stack: d.Stack, ledger: d.Ledger, out: out}
}

// LineReader supplies command lines. Readline returns io.EOF at end of input.
type LineReader interface {
	Readline() (string, error)
}

// handler runs one command with the words after the command name.
type handler func(ctx context.Context, s *Shell, args []string) error

type command struct {
	minArgs, maxArgs int
	// secret lists positions in args that hold passwords.
	secret []int
	run    handler
}

var commands = map[string]command{
	"quit":     {0, 0, nil, nil},
	"exit":     {0, 0, nil, nil},
	"su":       {1, 2, []int{1}, runSu},
	"logout":   {0, 0, nil, runLogout},
	"register": {3, 3, []int{1}, runRegister},
	"passwd":   {2, 3, []int{1, 2}, runPasswd},
	"useradd":  {4, 4, []int{1}, runUseradd},
	"delete":   {1, 1, nil, runDelete},
	"show":     {0, 2, nil, runShow},
	"buy":      {2, 2, nil, runBuy},
	"select":   {1, 1, nil, runSelect},
	"modify":   {1, -1, nil, runModify},
	"import":   {2, 2, nil, runImport},
	"report":   {1, 1, nil, runReport},
	"log":      {0, 0, nil, runLog},
}

// Commands returns every command name in sorted order.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stack returns the shell's session stack.
func (s *Shell) Stack() *account.Stack { return s.stack }

// Execute runs one command line. An empty line is a no-op.
func (s *Shell) Execute(ctx context.Context, line string) error {
	words, err := splitLine(strings.TrimSuffix(line, "\r"))
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return nil
	}
	name, args := words[0], words[1:]
	cmd, ok := commands[name]
	if !ok {
		return model.Errorf(model.CodeValidationFailed, "unknown command %q", name)
	}
	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		return model.Errorf(model.CodeValidationFailed, "%s: wrong number of arguments", name)
	}
	if cmd.run == nil {
		return ErrQuit
	}
	issuer := s.stack.Top().User.ID
	if err := cmd.run(ctx, s, args); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	rec := ledger.CmdRecord{UserID: issuer, Command: masked(name, args, cmd.secret)}
	if _, err := s.ledger.AppendCommand(rec); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	return nil
}

// Run executes lines from r until end of input or quit. A failed command
// prints "Invalid" and the loop continues.
func (s *Shell) Run(ctx context.Context, r LineReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := r.Readline()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}

		err = s.Execute(ctx, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			slog.Debug("command rejected", "code", model.CodeOf(err), "error", err)
			fmt.Fprintln(s.out, "Invalid")
		}
	}
}

func masked(name string, args []string, secret []int) string {
	words := make([]string, 0, len(args)+1)
	words = append(words, name)
	for i, a := range args {
		for _, j := range secret {
			if i == j {
				a = mask
				break
			}
		}
		words = append(words, a)
	}
	return strings.Join(words, " ")
}
