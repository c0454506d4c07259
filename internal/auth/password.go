// Package auth hashes and verifies salted passwords.
//
// The stored hash is bcrypt over the hex SHA-256 digest of password+salt.
// The digest keeps the bcrypt input at 64 bytes, under its 72 byte limit,
// whatever the password length.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const defaultCost = 12

// ErrPasswordMismatch is returned by Verify when the password is wrong.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordService provides salted bcrypt hashing and verification.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with the given cost.
// Use bcrypt.MinCost in tests; it is far too weak for production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes plaintext combined with salt.
func (p *PasswordService) Hash(plaintext, salt string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(digest(plaintext, salt), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil when plaintext+salt matches hash and ErrPasswordMismatch
// when it does not.
func (p *PasswordService) Verify(hash, plaintext, salt string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), digest(plaintext, salt))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

func digest(plaintext, salt string) []byte {
	sum := sha256.Sum256([]byte(plaintext + salt))
	return []byte(hex.EncodeToString(sum[:]))
}
