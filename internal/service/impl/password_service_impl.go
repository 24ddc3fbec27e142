package impl

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the work factor the legacy deployment used.
const DefaultBcryptCost = 12

type PasswordServiceImpl struct {
	cost int
}

func NewPasswordServiceBcrypt(cost int) *PasswordServiceImpl {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordServiceImpl{cost: cost}
}

// Hash produces a self-contained bcrypt string: salt and cost are
// embedded, so repeated calls with the same input differ.
func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify fails closed: a malformed hash, a mismatched password and an
// empty input all report false, never an error. bcrypt's comparison is
// constant-time.
func (p *PasswordServiceImpl) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
