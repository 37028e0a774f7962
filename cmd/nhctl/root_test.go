package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{{"migrate"}, {"apikey", "create"}, {"wallet", "credit"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestMigrateCmd_RejectsUnknownCommand(t *testing.T) {
	cmd := newMigrateCmd(&app{})
	assert.Error(t, cmd.Args(cmd, []string{"sideways"}))
	assert.NoError(t, cmd.Args(cmd, []string{"status"}))
}
