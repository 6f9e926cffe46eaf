package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Tree(t *testing.T) {
	root := newRootCmd()

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())

	refresh, _, err := root.Find([]string{"stats", "refresh"})
	require.NoError(t, err)
	assert.Equal(t, "refresh", refresh.Name())
	assert.NotNil(t, refresh.Flags().Lookup("enqueue"))

	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestRootCommand_Version(t *testing.T) {
	root := newRootCmd()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "pydigger version dev")
}
