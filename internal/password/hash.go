// Package password provides credential hashing and the signup password
// policy (common-password denylist plus a minimum length).
package password

import "golang.org/x/crypto/bcrypt"

// Hash returns the bcrypt hash of plain using the given cost.
func Hash(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares a bcrypt hash against a plain candidate.  bcrypt
// performs the comparison in constant time.
func Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
