package crypto

import "golang.org/x/crypto/bcrypt"

// bcryptCost trades roughly 250ms of hashing per login for resistance to
// offline cracking. bcrypt truncates input at 72 bytes, which is why
// registration caps password length there.
const bcryptCost = 12

// PasswordHasher hashes credentials at registration and checks them at
// login.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type BcryptHasher struct{}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare returns a non-nil error on mismatch; callers map it to an
// invalid-credentials response without inspecting it.
func (h *BcryptHasher) Compare(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
