package emit

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
)

// Hash returns the content hash of generated text. Line endings are
// normalized first so a checkout with CRLF endings hashes the same.
func Hash(text []byte) string {
	sum := sha256.Sum256(normalizeLineEndings(text))
	return "h1:" + base64.StdEncoding.EncodeToString(sum[:])
}

// HashFile hashes the file at path.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return Hash(data), nil
}

// StaleError is returned when a unit's text no longer matches the hash
// recorded in its manifest.
type StaleError struct {
	Unit     string
	Path     string
	Expected string
	Actual   string
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s is stale: %s has hash %s, manifest records %s", e.Unit, e.Path, e.Actual, e.Expected)
}

// normalizeLineEndings converts all line endings to LF for consistent hashing.
func normalizeLineEndings(data []byte) []byte {
	result := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\r' {
			if i+1 < len(data) && data[i+1] == '\n' {
				continue
			}
			result = append(result, '\n')
		} else {
			result = append(result, data[i])
		}
	}
	return result
}
