package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/taskauth/internal/auth/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, sub := range []string{"serve", "migrate"} {
		assert.Contains(t, output, sub, "Help missing %q command", sub)
	}
	for _, flag := range []string{"--config", "--port", "--db-driver", "--swagger"} {
		assert.Contains(t, output, flag, "Help missing %q flag", flag)
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantFlag string
	}{
		{
			name:     "separate value",
			args:     []string{"--config", "/path/to/auth.yaml", "--help"},
			wantFlag: "/path/to/auth.yaml",
		},
		{
			name:     "with equals",
			args:     []string{"--config=/etc/taskauth.yaml", "--help"},
			wantFlag: "/etc/taskauth.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset global
			configFile = ""

			cmd := NewRootCmd()
			cmd.SetOut(new(bytes.Buffer))
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			assert.Equal(t, tt.wantFlag, configFile)
		})
	}
}

func TestServeRequiresSecret(t *testing.T) {
	configFile = ""
	t.Setenv("JWT_SECRET", "")

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"serve"})

	err := cmd.Execute()
	require.ErrorIs(t, err, app.ErrMissingSecret)
}

func TestMigrateCommand(t *testing.T) {
	configFile = ""
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")

	dsn := filepath.Join(t.TempDir(), "auth.db")

	// Twice: the second run has nothing to apply.
	for range 2 {
		cmd := NewRootCmd()
		buf := new(bytes.Buffer)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{"migrate", "--db-dsn", dsn})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, buf.String(), "Migrations completed successfully")
	}
}
