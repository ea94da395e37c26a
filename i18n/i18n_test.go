package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l, err := New([]string{"en", " es ", "", "es", "de"})
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "es", "de"}, l.Codes())
	assert.Equal(t, "en", l.Default())
	assert.True(t, l.Supported("es"))
	assert.False(t, l.Supported("fr"))
}

func TestNewRejectsEmptyAndInvalid(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New([]string{"en", "not a locale!"})
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	l, err := New([]string{"en", "es", "fr"})
	require.NoError(t, err)

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"es-MX,es;q=0.9,en;q=0.8", "es"},
		{"fr-CH, fr;q=0.9", "fr"},
		{"ja", "en"},
		{"garbage;;;", "en"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.Match(tt.header), "Match(%q)", tt.header)
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "español", Name("es"))
	assert.Equal(t, "Deutsch", Name("de"))
	assert.Equal(t, "???", Name("???"))
}

func TestT(t *testing.T) {
	assert.Equal(t, "Traducido por", T("es", "Translated by"))
	assert.Equal(t, "Translated by", T("en", "Translated by"))
	assert.Equal(t, "Kapitel 3", T("de", "Chapter %d", 3))
	assert.Equal(t, "Chapter 2", T("en", "Chapter %d", 2))
	assert.Equal(t, "Unknown key", T("es", "Unknown key"))
}
