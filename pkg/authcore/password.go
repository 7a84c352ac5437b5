package authcore

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes a plaintext password for storage.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", Error.Wrap(err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches hash. Spec §4.1: any
// bcrypt mismatch or hash error is a forbidden login, never a distinct
// error kind the client can distinguish.
func VerifyPassword(hash, plaintext string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)); err != nil {
		return Forbidden.New("invalid credentials")
	}
	return nil
}
