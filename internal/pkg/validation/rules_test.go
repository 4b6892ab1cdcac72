package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidNationalID(t *testing.T) {
	assert.True(t, IsValidNationalID("30123456"))
	assert.True(t, IsValidNationalID("3012345"))
	assert.False(t, IsValidNationalID("301234"))
	assert.False(t, IsValidNationalID("301234567"))
	assert.False(t, IsValidNationalID("3012345a"))
	assert.False(t, IsValidNationalID(""))
}

func TestIsValidBankAccount(t *testing.T) {
	assert.True(t, IsValidBankAccount("0170099220000067797370"))
	assert.False(t, IsValidBankAccount("017009922000006779737"))   // 21 digits
	assert.False(t, IsValidBankAccount("01700992200000677973701")) // 23 digits
	assert.False(t, IsValidBankAccount("0170-0992-2000-00677973"))
	assert.False(t, IsValidBankAccount(""))
}
