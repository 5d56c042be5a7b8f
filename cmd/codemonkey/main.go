// Package main is the entry point for the codemonkey CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/codemonkey-cli/codemonkey/internal/exitcode"
)

func main() {
	err := newRootCmd().Execute()
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)

	var exitErr *exitcode.Error
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	os.Exit(1)
}
