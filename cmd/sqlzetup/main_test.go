package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, 2, exitCode(zetuperrors.NewParseError("answers.yaml", 4, errors.New("bad yaml"))))
	require.Equal(t, 2, exitCode(zetuperrors.NewValidationError("port", "out of range", nil)))
	require.Equal(t, 1, exitCode(zetuperrors.NewExecutionError("install_engine", errors.New("exit 1"))))
	require.Equal(t, 1, exitCode(errors.New("anything else")))
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := newVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	require.NoError(t, cmd.Execute())
	require.Contains(t, buf.String(), "sqlZetup")
	require.Contains(t, buf.String(), "commit:")
}

func TestRootCmdRegistersSubcommands(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.Contains(t, names, "install")
	require.Contains(t, names, "configure")
	require.Contains(t, names, "verify")
	require.Contains(t, names, "run-scripts")
	require.Contains(t, names, "install-ssms")
	require.Contains(t, names, "version")
}
