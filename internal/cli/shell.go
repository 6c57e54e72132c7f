package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/roach88/bookstore/internal/shell"
)

// historyLimit bounds the in-memory line history of an interactive session.
// History is never written to disk because command lines carry passwords.
const historyLimit = 500

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Read bookstore commands from standard input",
		Long: `Read bookstore commands line by line until end of input, quit or exit.

On a terminal the shell offers line editing, history and command completion.
Piped input is read plainly. Any rejected command prints "Invalid".

Examples:
  bookstore shell
  bookstore shell < commands.txt
  bookstore --data-dir /var/lib/bookstore shell`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, rootOpts)
		},
	}
}

func runShell(cmd *cobra.Command, opts *RootOptions) error {
	ctx := cmd.Context()
	a, err := opts.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sh := a.Shell(cmd.OutOrStdout())

	in := cmd.InOrStdin()
	var reader shell.LineReader
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		tr, err := newTerminalReader(sh, f, cmd.OutOrStdout())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start line editor", err)
		}
		defer tr.Close()
		reader = tr
	} else {
		reader = newPlainReader(in)
	}

	if err := sh.Run(ctx, reader); err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	return nil
}

// plainReader reads newline-terminated lines. A final line without a
// newline is still returned before io.EOF.
type plainReader struct {
	r *bufio.Reader
}

func newPlainReader(r io.Reader) *plainReader {
	return &plainReader{r: bufio.NewReader(r)}
}

func (p *plainReader) Readline() (string, error) {
	line, err := p.r.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		return line, nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}

// terminalReader wraps a readline instance. The prompt shows the user on
// top of the session stack.
type terminalReader struct {
	rl *readline.Instance
	sh *shell.Shell
}

func newTerminalReader(sh *shell.Shell, in *os.File, out io.Writer) (*terminalReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              prompt(sh),
		Stdin:               in,
		Stdout:              out,
		HistoryLimit:        historyLimit,
		AutoComplete:        completer(),
		InterruptPrompt:     "^C",
		EOFPrompt:           "quit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	return &terminalReader{rl: rl, sh: sh}, nil
}

// Readline returns the next line. Ctrl-C discards a partly typed line; on
// an empty line it ends the session like Ctrl-D.
func (t *terminalReader) Readline() (string, error) {
	for {
		t.rl.SetPrompt(prompt(t.sh))
		line, err := t.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return "", io.EOF
			}
			continue
		}
		return line, err
	}
}

func (t *terminalReader) Close() error {
	return t.rl.Close()
}

// filterInput drops Ctrl-Z so the shell cannot be suspended mid-line.
func filterInput(r rune) (rune, bool) {
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}

func prompt(sh *shell.Shell) string {
	return sh.Stack().Top().User.ID + "> "
}

// completer completes command names and the fixed subcommand words.
func completer() *readline.PrefixCompleter {
	sub := map[string][]string{
		"report": {"finance", "employee", "myself"},
		"show":   {"finance", "-ISBN=", "-name=", "-author=", "-keyword="},
		"modify": {"-ISBN=", "-name=", "-author=", "-keyword=", "-price="},
	}
	names := shell.Commands()
	items := make([]readline.PrefixCompleterInterface, 0, len(names))
	for _, name := range names {
		var children []readline.PrefixCompleterInterface
		for _, word := range sub[name] {
			children = append(children, readline.PcItem(word))
		}
		items = append(items, readline.PcItem(name, children...))
	}
	return readline.NewPrefixCompleter(items...)
}
