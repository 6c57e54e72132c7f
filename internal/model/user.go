package model

// Privilege is a totally ordered capability tier.
type Privilege int

// Tiers. Comparisons use the integer value.
const (
	Guest    Privilege = 0
	Customer Privilege = 1
	Worker   Privilege = 3
	Root     Privilege = 7
)

// AnonymousID names the reserved Guest account at the bottom of every session.
const AnonymousID = "<anonymous>"

// MaxUserFieldLen bounds user ids, passwords and display names.
const MaxUserFieldLen = 30

// String returns the tier name.
func (p Privilege) String() string {
	switch p {
	case Guest:
		return "guest"
	case Customer:
		return "customer"
	case Worker:
		return "worker"
	case Root:
		return "root"
	}
	return "unknown"
}

// Valid reports whether p is one of the four defined tiers.
func (p Privilege) Valid() bool {
	switch p {
	case Guest, Customer, Worker, Root:
		return true
	}
	return false
}

// ParsePrivilege parses a tier from its command-line digit.
func ParsePrivilege(s string) (Privilege, error) {
	switch s {
	case "0":
		return Guest, nil
	case "1":
		return Customer, nil
	case "3":
		return Worker, nil
	case "7":
		return Root, nil
	}
	return Guest, Errorf(CodeValidationFailed, "unknown privilege %q", s)
}

// User is one directory record. Passwords are stored as a bcrypt hash.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Privilege    Privilege `json:"privilege"`
}

// IsAnonymous reports whether u is the reserved anonymous account.
func (u User) IsAnonymous() bool {
	return u.ID == AnonymousID
}

func isWordChars(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		default:
			return false
		}
	}
	return true
}

// ValidateUserID checks 1-30 characters of [0-9A-Za-z_].
func ValidateUserID(id string) error {
	if id == "" || len(id) > MaxUserFieldLen || !isWordChars(id) {
		return Errorf(CodeValidationFailed, "invalid user id %q", id)
	}
	return nil
}

// ValidatePassword checks 1-30 characters of [0-9A-Za-z_].
func ValidatePassword(password string) error {
	if password == "" || len(password) > MaxUserFieldLen || !isWordChars(password) {
		return Errorf(CodeValidationFailed, "invalid password")
	}
	return nil
}

// ValidateUserName checks 1-30 printable ASCII characters.
func ValidateUserName(name string) error {
	return validateText("user name", name, MaxUserFieldLen)
}
