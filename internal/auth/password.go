package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost balances hashing strength against login latency
const bcryptCost = 12

// HashPassword returns a one-way bcrypt hash of the password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
// The comparison is timing-safe.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
