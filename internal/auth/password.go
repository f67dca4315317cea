package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a new salted bcrypt hash for storage.
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword checks plain against a stored bcrypt hash. It only ever
// returns false on mismatch, never an error the caller must branch on.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
