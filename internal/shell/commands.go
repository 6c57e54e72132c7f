package shell

import (
	"context"
	"fmt"

	"github.com/roach88/bookstore/internal/account"
	"github.com/roach88/bookstore/internal/ledger"
	"github.com/roach88/bookstore/internal/model"
)

func runSu(ctx context.Context, s *Shell, args []string) error {
	id := args[0]
	if len(args) == 2 {
		_, err := s.dir.Authenticate(ctx, s.stack, id, args[1])
		return err
	}
	target, err := s.dir.Lookup(ctx, id)
	if err != nil {
		return err
	}
	current := s.stack.Top().User.Privilege
	if !account.CanSwitchWithoutPassword(current, target.Privilege) {
		return model.Errorf(model.CodeInsufficientPrivilege, "%s cannot become %s without a password", current, target.Privilege)
	}
	_, err = s.dir.Authenticate(ctx, s.stack, id, "")
	return err
}

func runLogout(_ context.Context, s *Shell, _ []string) error {
	if _, err := s.stack.Authorize(model.Customer); err != nil {
		return err
	}
	_, err := s.stack.Pop()
	return err
}

func runRegister(ctx context.Context, s *Shell, args []string) error {
	_, err := s.dir.Register(ctx, args[0], args[1], args[2])
	return err
}

func runPasswd(ctx context.Context, s *Shell, args []string) error {
	if _, err := s.stack.Authorize(model.Customer); err != nil {
		return err
	}
	if len(args) == 3 {
		return s.dir.ChangePassword(ctx, args[0], args[1], args[2])
	}
	g, err := s.stack.Authorize(model.Root)
	if err != nil {
		return err
	}
	return s.dir.ResetPassword(ctx, g, args[0], args[1])
}

func runUseradd(ctx context.Context, s *Shell, args []string) error {
	if _, err := s.stack.Authorize(model.Worker); err != nil {
		return err
	}
	tier, err := model.ParsePrivilege(args[2])
	if err != nil {
		return err
	}
	required, err := account.RequiredToCreate(tier)
	if err != nil {
		return err
	}
	g, err := s.stack.Authorize(required)
	if err != nil {
		return err
	}
	_, err = s.dir.CreateAccount(ctx, g, args[0], args[1], tier, args[3])
	return err
}

func runDelete(ctx context.Context, s *Shell, args []string) error {
	g, err := s.stack.Authorize(model.Root)
	if err != nil {
		return err
	}
	return s.dir.Remove(ctx, g, args[0])
}

func runShow(ctx context.Context, s *Shell, args []string) error {
	if len(args) > 0 && args[0] == "finance" {
		return showFinance(s, args[1:])
	}
	if _, err := s.stack.Authorize(model.Customer); err != nil {
		return err
	}
	if len(args) == 0 {
		books, err := s.catalog.ListAll(ctx)
		if err != nil {
			return err
		}
		return writeBooks(s.out, books)
	}
	if len(args) > 1 {
		return model.Errorf(model.CodeValidationFailed, "show takes one field")
	}

	clause, err := parseClause(args[0])
	if err != nil {
		return err
	}
	var books []model.Book
	switch c := clause.(type) {
	case model.ISBNClause:
		b, err := s.catalog.LookupByISBN(ctx, c.ISBN())
		if err != nil && model.CodeOf(err) != model.CodeNotFound {
			return err
		}
		if err == nil {
			books = append(books, b)
		}
	case model.NameClause:
		books, err = s.catalog.LookupBySecondaryField(ctx, model.FieldName, c.Name())
	case model.AuthorClause:
		books, err = s.catalog.LookupBySecondaryField(ctx, model.FieldAuthor, c.Author())
	case model.KeywordClause:
		books, err = s.catalog.LookupBySecondaryField(ctx, model.FieldKeyword, c.Keyword())
	default:
		return model.Errorf(model.CodeValidationFailed, "cannot show by %s", clause.Field())
	}
	if err != nil {
		return err
	}
	return writeBooks(s.out, books)
}

func showFinance(s *Shell, args []string) error {
	if _, err := s.stack.Authorize(model.Root); err != nil {
		return err
	}
	var (
		totals ledger.Totals
		err    error
	)
	switch len(args) {
	case 0:
		totals, err = s.ledger.SumAllTrades()
	case 1:
		n, perr := model.ParseCount(args[0])
		if perr != nil {
			return perr
		}
		if n == 0 {
			_, err := fmt.Fprintln(s.out)
			return err
		}
		totals, err = s.ledger.SumTrades(n)
	default:
		return model.Errorf(model.CodeValidationFailed, "show finance takes one count")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.out, formatTotals(totals))
	return err
}

func runBuy(ctx context.Context, s *Shell, args []string) error {
	g, err := s.stack.Authorize(model.Customer)
	if err != nil {
		return err
	}
	qty, err := model.ParseCount(args[1])
	if err != nil {
		return err
	}
	income, err := s.catalog.AdjustQuantity(ctx, g, args[0], -qty, func(amount int64) error {
		return s.ledger.Admit(ledger.Income(amount))
	})
	if err != nil {
		return err
	}
	if _, err := s.ledger.AppendTrade(ledger.Income(income)); err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.out, model.FormatPrice(income))
	return err
}

func runSelect(ctx context.Context, s *Shell, args []string) error {
	g, err := s.stack.Authorize(model.Worker)
	if err != nil {
		return err
	}
	b, err := s.catalog.CreateStub(ctx, g, args[0])
	if err != nil {
		return err
	}
	s.stack.Select(b.ISBN)
	return nil
}

func runModify(ctx context.Context, s *Shell, args []string) error {
	g, err := s.stack.Authorize(model.Worker)
	if err != nil {
		return err
	}
	selected, err := selection(s)
	if err != nil {
		return err
	}
	clauses := make([]model.FieldClause, 0, len(args))
	for _, a := range args {
		cl, err := parseClause(a)
		if err != nil {
			return err
		}
		clauses = append(clauses, cl)
	}
	b, err := s.catalog.EditFields(ctx, g, selected, clauses)
	if err != nil {
		return err
	}
	if b.ISBN != selected {
		s.stack.RenameSelections(selected, b.ISBN)
	}
	return nil
}

func runImport(ctx context.Context, s *Shell, args []string) error {
	g, err := s.stack.Authorize(model.Worker)
	if err != nil {
		return err
	}
	selected, err := selection(s)
	if err != nil {
		return err
	}
	qty, err := model.ParseCount(args[0])
	if err != nil {
		return err
	}
	cost, err := model.ParsePrice(args[1])
	if err != nil {
		return err
	}
	if err := s.ledger.Admit(ledger.Expense(cost)); err != nil {
		return err
	}
	if _, err := s.catalog.ImportStock(ctx, g, selected, qty); err != nil {
		return err
	}
	_, err = s.ledger.AppendTrade(ledger.Expense(cost))
	return err
}

func selection(s *Shell) (string, error) {
	isbn := s.stack.Selection()
	if isbn == "" {
		return "", model.Errorf(model.CodeValidationFailed, "no book selected")
	}
	return isbn, nil
}
