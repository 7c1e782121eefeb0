package password

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// randReader is the entropy source for salts and tokens.
var randReader io.Reader = rand.Reader

// GenerateToken returns n cryptographically secure random bytes,
// hex-encoded. It is used to mint signing secrets.
func GenerateToken(n int) (string, error) {
	b, err := generateRandomBytes(n)
	if err != nil {
		return "", fmt.Errorf("password: generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func generateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return nil, err
	}
	return b, nil
}
