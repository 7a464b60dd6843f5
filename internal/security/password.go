package security

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the work factor the platform has always used for
// stored credentials. Changing it only affects newly hashed passwords.
const bcryptCost = 12

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
// The comparison is constant-time inside bcrypt.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
