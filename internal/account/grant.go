package account

import (
	"github.com/roach88/bookstore/internal/model"
)

// Grant is the capability returned by Stack.Authorize. Only this package can
// construct a non-zero Grant; the zero value authorizes nothing.
type Grant struct {
	stack  *Stack
	tier   model.Privilege
	userID string
}

// Tier returns the tier the grant was issued for.
func (g Grant) Tier() model.Privilege { return g.tier }

// UserID returns the user whose frame was on top when the grant was issued.
func (g Grant) UserID() string { return g.userID }

// Require fails with ErrInsufficientPrivilege unless the grant was issued and
// its tier is at least required.
func (g Grant) Require(required model.Privilege) error {
	if g.stack == nil {
		return model.Errorf(model.CodeInsufficientPrivilege, "no grant")
	}
	if g.tier < required {
		return model.Errorf(model.CodeInsufficientPrivilege, "grant holds %s, need %s", g.tier, required)
	}
	return nil
}
