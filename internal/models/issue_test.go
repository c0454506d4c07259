package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriority_Valid(t *testing.T) {
	for _, p := range Priorities {
		assert.True(t, p.Valid(), string(p))
	}
	assert.False(t, Priority("Urgent").Valid())
	assert.False(t, Priority("high").Valid())
	assert.False(t, Priority("").Valid())
}

func TestIssue_AttachmentPath(t *testing.T) {
	assert.Equal(t, "", (&Issue{}).AttachmentPath())

	recorded := "uploads/abc.pdf"
	assert.Equal(t, recorded, (&Issue{PDFAttachment: &recorded}).AttachmentPath())
}
