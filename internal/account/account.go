// Package account builds the throwaway credentials used to register a supervisor
package account

import (
	"fmt"
	"registration-verifier/pkg/token"

	"github.com/badoux/checkmail"
)

// tokenLength is the length of the random part of a generated email
const tokenLength = 8

// Credentials are the values typed into the registration form
type Credentials struct {
	Email    string
	Password string
}

// Generator creates unique registration credentials
type Generator struct {
	Prefix   string
	Domain   string
	Password string

	// newToken is swapped out in tests
	newToken func(n int) (string, error)
}

// NewGenerator returns a generator for the given email prefix, domain and password
func NewGenerator(prefix, domain, password string) *Generator {
	return &Generator{
		Prefix:   prefix,
		Domain:   domain,
		Password: password,
		newToken: token.Generate,
	}
}

// Credentials returns a fresh set of credentials
// pageMillis is the page clock in milliseconds and the random token keeps two runs within
// the same millisecond apart
func (g *Generator) Credentials(pageMillis int64) (Credentials, error) {
	email, err := g.Email(pageMillis)
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{
		Email:    email,
		Password: g.Password,
	}, nil
}

// Email returns a new email address in the form prefix-millis-token@domain
func (g *Generator) Email(pageMillis int64) (string, error) {
	tok, err := g.newToken(tokenLength)
	if err != nil {
		return "", fmt.Errorf("could not generate token: %w", err)
	}

	email := fmt.Sprintf("%s-%d-%s@%s", g.Prefix, pageMillis, tok, g.Domain)
	if err := checkmail.ValidateFormat(email); err != nil {
		return "", fmt.Errorf("generated email %q: %w", email, err)
	}

	return email, nil
}
