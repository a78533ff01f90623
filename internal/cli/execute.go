package cli

import (
	"bytes"
	"context"

	"github.com/spf13/cobra"
)

// Execute runs the ledger command line with the process arguments.
func Execute(ctx context.Context) error {
	return NewRoot().ExecuteContext(ctx)
}

// ExecuteCommand runs a command and returns its output
func ExecuteCommand(root *cobra.Command, args ...string) (output string, err error) {
	_, output, err = ExecuteCommandC(root, args...)
	return output, err
}

// ExecuteCommandC runs a command and returns the command, its output, and any error
func ExecuteCommandC(root *cobra.Command, args ...string) (c *cobra.Command, output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	c, err = root.ExecuteC()

	return c, buf.String(), err
}
