package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorIncludesLine(t *testing.T) {
	t.Parallel()

	err := NewParseError("scripts/order.txt", 4, fmt.Errorf("missing separator"))
	require.Equal(t, "parse error: scripts/order.txt:4: missing separator", err.Error())

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	require.Equal(t, 4, parseErr.Line)
}

func TestParseErrorWithoutLine(t *testing.T) {
	t.Parallel()

	err := NewParseError("collations.txt", 0, fmt.Errorf("no such file"))
	require.Equal(t, "parse error: collations.txt: no such file", err.Error())
}

func TestValidationErrorFormatting(t *testing.T) {
	t.Parallel()

	err := NewValidationError("product_key", "required for edition Standard", nil)
	require.Equal(t, "validation error: product_key: required for edition Standard", err.Error())

	err = NewValidationError("", "request is nil", nil)
	require.Equal(t, "validation error: request is nil", err.Error())
}

func TestPreconditionErrorUnwrap(t *testing.T) {
	t.Parallel()

	root := fmt.Errorf("volume query failed")
	err := NewPreconditionError("allocation-unit", "cannot inspect D:", root)
	require.Equal(t, "precondition failed [allocation-unit]: cannot inspect D:", err.Error())
	require.ErrorIs(t, err, root)
}

func TestExecutionErrorCarriesStepID(t *testing.T) {
	t.Parallel()

	root := fmt.Errorf("exit status 1")
	err := NewExecutionError("install_engine", root)
	require.Equal(t, "execution error on step install_engine: exit status 1", err.Error())
	require.ErrorIs(t, err, root)
}

func TestVerificationErrorSentinelMismatch(t *testing.T) {
	t.Parallel()

	err := NewVerificationError("Table exists", "Table does not exist", nil)
	require.Equal(t, `verification failed: expected "Table exists", got "Table does not exist"`, err.Error())

	var verr *VerificationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "Table exists", verr.Expected)
}
