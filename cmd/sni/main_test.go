package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList(t *testing.T) {
	assert.Nil(t, stringList(nil))
	assert.Equal(t, []string{"en", "es"}, stringList("en, es,"))
	assert.Equal(t, []string{"en", "de"}, stringList([]any{"en", " de "}))
	assert.Equal(t, []string{"fr"}, stringList([]string{"", "fr"}))
	assert.Nil(t, stringList(42))
}

func TestSetupLogging(t *testing.T) {
	assert.NoError(t, setupLogging("debug"))
	assert.Error(t, setupLogging("loud"))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "sni dev\n", out.String())
}
