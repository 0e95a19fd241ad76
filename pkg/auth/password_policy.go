package auth

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tendant/simple-admin-console/internal/config"
)

// SignupSymbols is the punctuation set accepted as a password symbol on signup.
const SignupSymbols = `!@#$%^&*(),.?":{}|<>`

// SignupAlphabet is every character a signup password may contain.
const SignupAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789" + SignupSymbols

// Requirement is one rule of a policy as a message key and its arguments.
type Requirement struct {
	Key  string
	Args []any
}

// PasswordPolicy defines password complexity requirements. Letters and
// digits are ASCII only.
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
	// SpecialChars restricts which characters count as special.
	// Empty means any non-letter, non-digit, non-space character.
	SpecialChars string
	// AllowedChars is the full alphabet of a password. Empty allows any
	// character.
	AllowedChars string
}

// NewPasswordPolicy creates a PasswordPolicy from config.
func NewPasswordPolicy(cfg config.PasswordPolicyConfig) *PasswordPolicy {
	return &PasswordPolicy{
		MinLength:        cfg.MinLength,
		RequireUppercase: cfg.RequireUppercase,
		RequireLowercase: cfg.RequireLowercase,
		RequireNumber:    cfg.RequireNumber,
		RequireSpecial:   cfg.RequireSpecial,
		SpecialChars:     cfg.SpecialChars,
		AllowedChars:     cfg.AllowedChars,
	}
}

// DefaultPasswordPolicy is the signup policy: at least 8 characters with an
// uppercase letter, a digit and one of SignupSymbols, written in
// SignupAlphabet.
func DefaultPasswordPolicy() *PasswordPolicy {
	return &PasswordPolicy{
		MinLength:        8,
		RequireUppercase: true,
		RequireNumber:    true,
		RequireSpecial:   true,
		SpecialChars:     SignupSymbols,
		AllowedChars:     SignupAlphabet,
	}
}

// ValidatePassword checks if a password meets the policy requirements.
func (p *PasswordPolicy) ValidatePassword(password string) error {
	if p.MinLength > 0 && utf8.RuneCountInString(password) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters long", p.MinLength)
	}

	if p.AllowedChars != "" && !onlyAllowed(password, p.AllowedChars) {
		return fmt.Errorf("password contains characters that are not allowed")
	}

	if p.RequireUppercase && !containsUppercase(password) {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}

	if p.RequireLowercase && !containsLowercase(password) {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}

	if p.RequireNumber && !containsNumber(password) {
		return fmt.Errorf("password must contain at least one number")
	}

	if p.RequireSpecial && !p.containsSpecial(password) {
		return fmt.Errorf("password must contain at least one special character")
	}

	return nil
}

// Requirements lists the rules of the policy in the order they are checked.
func (p *PasswordPolicy) Requirements() []Requirement {
	var reqs []Requirement
	if p.MinLength > 0 {
		reqs = append(reqs, Requirement{Key: "signup.rule.min_length", Args: []any{p.MinLength}})
	}
	if p.RequireUppercase {
		reqs = append(reqs, Requirement{Key: "signup.rule.uppercase"})
	}
	if p.RequireLowercase {
		reqs = append(reqs, Requirement{Key: "signup.rule.lowercase"})
	}
	if p.RequireNumber {
		reqs = append(reqs, Requirement{Key: "signup.rule.number"})
	}
	if p.RequireSpecial {
		if p.SpecialChars != "" {
			reqs = append(reqs, Requirement{Key: "signup.rule.special", Args: []any{p.SpecialChars}})
		} else {
			reqs = append(reqs, Requirement{Key: "signup.rule.special_any"})
		}
	}
	if p.AllowedChars != "" {
		reqs = append(reqs, Requirement{Key: "signup.rule.allowed"})
	}
	return reqs
}

// HasRequirements returns true if the policy has any requirements.
func (p *PasswordPolicy) HasRequirements() bool {
	return p.MinLength > 0 || p.RequireUppercase || p.RequireLowercase || p.RequireNumber || p.RequireSpecial || p.AllowedChars != ""
}

func containsUppercase(s string) bool {
	for _, r := range s {
		if 'A' <= r && r <= 'Z' {
			return true
		}
	}
	return false
}

func containsLowercase(s string) bool {
	for _, r := range s {
		if 'a' <= r && r <= 'z' {
			return true
		}
	}
	return false
}

func containsNumber(s string) bool {
	for _, r := range s {
		if '0' <= r && r <= '9' {
			return true
		}
	}
	return false
}

func (p *PasswordPolicy) containsSpecial(s string) bool {
	if p.SpecialChars != "" {
		return strings.ContainsAny(s, p.SpecialChars)
	}
	for _, r := range s {
		if r > ' ' && r < utf8.RuneSelf && !isAlnum(r) {
			return true
		}
	}
	return false
}

func isAlnum(r rune) bool {
	return 'A' <= r && r <= 'Z' || 'a' <= r && r <= 'z' || '0' <= r && r <= '9'
}

func onlyAllowed(s, allowed string) bool {
	for _, r := range s {
		if !strings.ContainsRune(allowed, r) {
			return false
		}
	}
	return true
}
