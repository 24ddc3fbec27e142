package service

type PasswordService interface {
	Hash(password string) (string, error)
	// Verify never returns an error: malformed hashes and mismatches both
	// report false.
	Verify(password, hash string) bool
}
