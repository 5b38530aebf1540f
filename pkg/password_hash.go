package pkg

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted bcrypt hash for the given plaintext password.
// Two calls with the same password never produce the same hash.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return BytesToString(bytes), err
}

// CheckPasswordHash returns false for any mismatch or malformed hash, never an error.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
