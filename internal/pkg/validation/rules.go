package validation

import "regexp"

// Validation rule patterns
var (
	// National identifier pattern - 7 or 8 digits
	NationalIDPattern = `^\d{7,8}$`

	// Bank account pattern - CBU-style, 22 digits
	BankAccountPattern = `^\d{22}$`

	// Password min length
	PasswordMinLength = 8
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	NationalID  *regexp.Regexp
	BankAccount *regexp.Regexp
}{
	NationalID:  regexp.MustCompile(NationalIDPattern),
	BankAccount: regexp.MustCompile(BankAccountPattern),
}

// IsValidNationalID reports whether the value looks like a national identifier.
func IsValidNationalID(value string) bool {
	return CompiledPatterns.NationalID.MatchString(value)
}

// IsValidBankAccount reports whether the value looks like a bank account number.
func IsValidBankAccount(value string) bool {
	return CompiledPatterns.BankAccount.MatchString(value)
}
