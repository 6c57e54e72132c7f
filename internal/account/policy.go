package account

import (
	"github.com/roach88/bookstore/internal/model"
)

// RequiredToCreate returns the tier a caller needs to create an account of
// tier target: Worker for a Customer, Root for a Worker. Other targets cannot
// be created through CreateAccount.
func RequiredToCreate(target model.Privilege) (model.Privilege, error) {
	switch target {
	case model.Customer:
		return model.Worker, nil
	case model.Worker:
		return model.Root, nil
	}
	return model.Guest, model.Errorf(model.CodeValidationFailed, "cannot create %s accounts", target)
}

// CanSwitchWithoutPassword reports whether a session at tier current may
// log in as an account of tier target without its password.
func CanSwitchWithoutPassword(current, target model.Privilege) bool {
	return current > target
}
