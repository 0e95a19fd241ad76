package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail    = errors.New("invalid email address format")
	ErrDisposableEmail = errors.New("disposable email addresses are not allowed")
)

// Common disposable email domains to block (can be extended)
var disposableDomains = map[string]bool{
	"tempmail.com":      true,
	"10minutemail.com":  true,
	"guerrillamail.com": true,
	"mailinator.com":    true,
	"throwaway.email":   true,
}

// addressRegex accepts local@domain.tld where the domain has at least one dot
// and a top-level label of two or more characters.
var addressRegex = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@(([^<>()\[\]\\.,;:\s@"]+\.)+[^<>()\[\]\\.,;:\s@"]{2,})$`)

// Email validation regex (stricter than RFC 5322 for practical use)
var strictRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

const maxEmailLength = 254 // RFC 5321

// ValidateEmail validates an email address for format and length.
func ValidateEmail(email string, strict bool, blockDisposable bool) error {
	if email == "" {
		return fmt.Errorf("email address is required")
	}

	if len(email) > maxEmailLength {
		return fmt.Errorf("email address is too long (max %d characters)", maxEmailLength)
	}

	normalized := NormalizeEmail(email)

	if !addressRegex.MatchString(normalized) {
		return ErrInvalidEmail
	}

	if strict && !strictRegex.MatchString(normalized) {
		return ErrInvalidEmail
	}

	if blockDisposable {
		if disposableDomains[getDomain(normalized)] {
			return ErrDisposableEmail
		}
	}

	return nil
}

// NormalizeEmail normalizes an email address by lowercasing and trimming.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailRules are the address checks applied to submitted forms.
type EmailRules struct {
	// Strict limits addresses to unquoted ASCII.
	Strict bool
	// BlockDisposable rejects known throwaway mail domains.
	BlockDisposable bool
}

// Validate checks email against the rules.
func (r EmailRules) Validate(email string) error {
	return ValidateEmail(email, r.Strict, r.BlockDisposable)
}

// ProblemKey returns the message key for why email fails the rules, or ""
// when it passes.
func (r EmailRules) ProblemKey(email string) string {
	err := r.Validate(email)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDisposableEmail):
		return "form.disposable_email"
	default:
		return "form.invalid_email"
	}
}

// EmailProblem is a rejected entry of an address list.
type EmailProblem struct {
	Email string
	Key   string
}

// ParseEmailList splits an invite input on commas and whitespace, validates
// each address against rules and drops duplicates. Every rejected entry gets
// one problem.
func ParseEmailList(input string, rules EmailRules) ([]string, []EmailProblem) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\r' || r == '\t'
	})

	var emails []string
	var problems []EmailProblem
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		email := strings.TrimSpace(f)
		if email == "" {
			continue
		}
		if key := rules.ProblemKey(email); key != "" {
			problems = append(problems, EmailProblem{Email: email, Key: key})
			continue
		}
		norm := NormalizeEmail(email)
		if seen[norm] {
			problems = append(problems, EmailProblem{Email: email, Key: "users.invite_duplicate"})
			continue
		}
		seen[norm] = true
		emails = append(emails, email)
	}
	return emails, problems
}

// getDomain extracts the domain from an email address.
func getDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
