package model

// PasswordHasher produces and verifies one-way salted password hashes.
// Hash is non-deterministic: two calls on the same plaintext yield
// different outputs. Length and complexity policy belongs to the caller.
type PasswordHasher interface {
	Hash(plaintext string) ([]byte, error)
	Verify(plaintext string, hash []byte) bool
}
