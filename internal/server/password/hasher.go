// Package password provides credential hashing and verification.
package password

// Hasher hashes plaintext credentials and checks candidates against a
// stored hash.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, hash string) bool
}
