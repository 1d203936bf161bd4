package main

import (
	"errors"
	"fmt"
	"os"

	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit code: 2 for input problems the
// operator must fix before retrying, 1 for everything else.
func exitCode(err error) int {
	var parseErr *zetuperrors.ParseError
	var validationErr *zetuperrors.ValidationError
	if errors.As(err, &parseErr) || errors.As(err, &validationErr) {
		return 2
	}
	return 1
}
