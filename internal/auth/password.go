package auth

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nandasafiq/hospital-management/internal"
)

// specialChars is the fixed punctuation set accepted as "special" by the
// password policy.
const specialChars = `!@#$%^&*(),.?":{}|<>`

// weakPasswords is a small denylist of passwords rejected regardless of how
// the character-class rules come out. Checked case-insensitively.
var weakPasswords = map[string]struct{}{
	"password": {},
	"123456":   {},
	"admin":    {},
	"qwerty":   {},
	"letmein":  {},
	"welcome":  {},
	"monkey":   {},
	"dragon":   {},
	"master":   {},
	"football": {},
}

// PasswordPolicy validates password strength. It is a pure function over the
// configured rules; nothing here logs or stores the password.
type PasswordPolicy struct {
	MinLength           int
	MaxLength           int
	RequireUppercase    bool
	RequireLowercase    bool
	RequireDigits       bool
	RequireSpecialChars bool
}

func NewPasswordPolicy(cfg internal.SecurityConfig) PasswordPolicy {
	return PasswordPolicy{
		MinLength:           cfg.MinPasswordLength,
		MaxLength:           cfg.MaxPasswordLength,
		RequireUppercase:    cfg.PasswordRequireUppercase,
		RequireLowercase:    cfg.PasswordRequireLowercase,
		RequireDigits:       cfg.PasswordRequireDigits,
		RequireSpecialChars: cfg.PasswordRequireSpecialChars,
	}
}

// Validate applies the rules in a fixed order; the first rule that fails
// decides the reason.
func (p PasswordPolicy) Validate(password string) (bool, string) {
	if len(password) < p.MinLength {
		return false, fmt.Sprintf("Password must be at least %d characters long", p.MinLength)
	}

	if len(password) > p.MaxLength {
		return false, fmt.Sprintf("Password must be no more than %d characters long", p.MaxLength)
	}

	if p.RequireUppercase && !containsClass(password, unicode.IsUpper) {
		return false, "Password must contain at least one uppercase letter"
	}

	if p.RequireLowercase && !containsClass(password, unicode.IsLower) {
		return false, "Password must contain at least one lowercase letter"
	}

	if p.RequireDigits && !containsClass(password, unicode.IsDigit) {
		return false, "Password must contain at least one digit"
	}

	if p.RequireSpecialChars && !strings.ContainsAny(password, specialChars) {
		return false, "Password must contain at least one special character"
	}

	if _, weak := weakPasswords[strings.ToLower(password)]; weak {
		return false, "Password is too common. Please choose a stronger password"
	}

	return true, ""
}

func containsClass(s string, class func(rune) bool) bool {
	for _, r := range s {
		if class(r) {
			return true
		}
	}
	return false
}
