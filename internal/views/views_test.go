package views

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestTemplates_Parse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{
		"login.html", "error.html",
		"issues.html", "issue_form.html", "issue_detail.html",
		"comments.html", "comment_form.html",
		"persons.html", "person_form.html",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestTemplates_ErrorPageWithoutUser(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "error.html", map[string]any{
		"Title":   "Not found",
		"Message": "Issue not found",
	}))
	assert.Contains(t, buf.String(), "Issue not found")
	assert.NotContains(t, buf.String(), "Log out")
}

func TestMarkdown(t *testing.T) {
	html := string(Markdown("Steps:\n\n1. open **settings**\n2. click save"))
	assert.Contains(t, html, "<strong>settings</strong>")
	assert.Contains(t, html, "<ol>")
}

func TestMarkdown_DropsRawHTML(t *testing.T) {
	html := string(Markdown("<script>alert(1)</script>"))
	assert.NotContains(t, html, "<script>")
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2024-03-01", FormatDate(datatypes.Date(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))))
	assert.Empty(t, FormatDate(datatypes.Date{}))
}
