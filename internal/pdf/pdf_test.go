package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer("", nil)
	out, err := r.Render(Document{
		Title:    "Commercial registration 1010101010",
		Subtitle: "Acme Trading Co.",
		Sections: []Section{{
			Heading: "Registration",
			Fields: []Field{
				{Label: "Status", Value: "active"},
				{Label: "Capital", Value: "500000"},
				{Label: "Expiry", Value: ""},
			},
		}},
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		GeneratedBy: "user-1",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "%%EOF")
}

func TestRenderer_MissingFont(t *testing.T) {
	r := NewRenderer("/does/not/exist.ttf", time.UTC)
	_, err := r.Render(Document{Title: "x"})
	assert.Error(t, err)
}
