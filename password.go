package rbac

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor the rest of the deployment was
// provisioned with. Changing it only affects newly hashed passwords.
const bcryptCost = 10

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(h), err
}

// PasswordMatches validates the given cleartext password against the
// stored hash. Absent inputs or a mismatch yield false; it never errors.
func PasswordMatches(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
