package token

import (
	"crypto/rand"
	"errors"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// maxByte is the largest multiple of len(alphabet) that fits in a byte
// bytes at or above it are rejected so every character is equally likely
const maxByte = 256 - (256 % len(alphabet))

// Generate returns a crypto-secure random string of length n
// The random string contains the following characters:
// abcdefghijklmnopqrstuvwxyz0123456789
// The output is lower case so it survives case-insensitive storage of email addresses
func Generate(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("length must be greater than zero")
	}

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}

		for _, b := range buf {
			if int(b) >= maxByte {
				continue
			}

			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}
