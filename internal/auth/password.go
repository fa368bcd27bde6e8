package auth

import "unicode"

// PasswordRule is one registration password requirement.
type PasswordRule struct {
	ID    string
	Label string
	Test  func(string) bool
}

var passwordRules = []PasswordRule{
	{ID: "length", Label: "At least 8 characters", Test: func(p string) bool { return len([]rune(p)) >= 8 }},
	{ID: "uppercase", Label: "One uppercase letter", Test: hasRune(unicode.IsUpper)},
	{ID: "lowercase", Label: "One lowercase letter", Test: hasRune(unicode.IsLower)},
	{ID: "number", Label: "One number", Test: hasRune(unicode.IsDigit)},
}

// PasswordRules returns every requirement in display order.
func PasswordRules() []PasswordRule {
	return append([]PasswordRule(nil), passwordRules...)
}

// CheckPassword returns the rules password does not meet.
func CheckPassword(password string) []PasswordRule {
	var unmet []PasswordRule
	for _, rule := range passwordRules {
		if !rule.Test(password) {
			unmet = append(unmet, rule)
		}
	}
	return unmet
}

func hasRune(pred func(rune) bool) func(string) bool {
	return func(s string) bool {
		for _, r := range s {
			if pred(r) {
				return true
			}
		}
		return false
	}
}
