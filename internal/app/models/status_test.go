package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusIsValid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.IsValid(), "%s", s)
	}
	assert.False(t, Status("PENDING").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusPaid.IsTerminal())
	assert.True(t, StatusExcluded.IsTerminal())

	for _, s := range AllStatuses {
		if s == StatusPaid || s == StatusExcluded {
			continue
		}
		assert.False(t, s.IsTerminal(), "%s", s)
	}
}

func TestDocumentTypeIsValid(t *testing.T) {
	for _, d := range AllDocumentTypes {
		assert.True(t, d.IsValid(), "%s", d)
	}
	assert.False(t, DocumentType("SELFIE").IsValid())
}
