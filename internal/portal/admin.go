package portal

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// PasswordDigest returns the hex SHA-256 digest used for stored admin
// passwords.
func PasswordDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// UpsertAdmin creates or updates an admin account with the given password.
func (s *Store) UpsertAdmin(ctx context.Context, username, password string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO admins (username, password_sha256)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE
		SET password_sha256 = EXCLUDED.password_sha256`,
		username, PasswordDigest(password))
	if err != nil {
		return fmt.Errorf("upserting admin %q: %w", username, err)
	}
	return nil
}

// Authenticate verifies an admin login. The digest comparison is constant
// time; an unknown username compares against a dummy digest so timing does
// not reveal account existence.
func (s *Store) Authenticate(ctx context.Context, username, password string) (bool, error) {
	var stored string
	err := s.db.QueryRow(ctx,
		`SELECT password_sha256 FROM admins WHERE username = $1`, username).Scan(&stored)
	if err != nil {
		if isNoRows(err) {
			subtle.ConstantTimeCompare([]byte(PasswordDigest(password)), []byte(PasswordDigest("")))
			return false, nil
		}
		return false, fmt.Errorf("looking up admin %q: %w", username, err)
	}

	given := PasswordDigest(password)
	return subtle.ConstantTimeCompare([]byte(given), []byte(stored)) == 1, nil
}
