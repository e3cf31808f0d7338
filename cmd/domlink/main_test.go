package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(zerolog.Nop(), strings.NewReader(""), &out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTokenize(t *testing.T) {
	out, err := execute(t, "tokenize", "--json", "login `a b` 'c d' \"e f\" g")
	require.NoError(t, err)
	assert.Equal(t, `["login","`+"`a b`"+`","'c d'","\"e f\"","g"]`+"\n", out)
}

func TestCommandsListsAllowList(t *testing.T) {
	out, err := execute(t, "commands")
	require.NoError(t, err)
	assert.Contains(t, out, "appendElement")
	assert.Contains(t, out, "getAttribute")
	assert.NotContains(t, out, "eval")
}

func TestCommandsRespectsDenyList(t *testing.T) {
	out, err := execute(t, "commands", "--deny-commands", "innerHTML")
	require.NoError(t, err)
	assert.NotContains(t, out, "innerHTML")
	assert.Contains(t, out, "appendElement")

	_, err = execute(t, "commands", "--deny-commands", "nosuch")
	assert.Error(t, err)
}

func TestRootRejectsBadConfig(t *testing.T) {
	_, err := execute(t, "--protocol", "exec")
	assert.Error(t, err)
}
