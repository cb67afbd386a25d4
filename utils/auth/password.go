package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored account passwords
const PasswordCost = 12

// MaxPasswordBytes is the longest input bcrypt will hash. Request validation
// enforces it with the maxbytes tag before a hash is attempted.
const MaxPasswordBytes = 72

var ErrPasswordMismatch = errors.New("password does not match")

// HashPassword returns the bcrypt hash stored on an account. Length rules
// belong to request validation; this only reports what bcrypt rejects.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports ErrPasswordMismatch when password does not produce hash
func VerifyPassword(hash, password string) error {
	switch err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return err
	}
}
