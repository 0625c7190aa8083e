package common

import (
	"context"
	"errors"
	"fmt"
	"os"

	internalclient "github.com/rtbo/scull/cmd/scull-cli/internal/client"
	"github.com/spf13/cobra"
)

// ExitOnErr prints error and exits with a code depending on the error type
//
//	0 if nil
//	1 if untyped or internal
//	2 if the operation was cancelled or timed out
//	3 if the node API rejected the request
func ExitOnErr(cmd *cobra.Command, errFmt string, err error) {
	if err == nil {
		return
	}

	if errFmt != "" {
		err = fmt.Errorf(errFmt, err)
	}

	const (
		_ = iota
		internal
		cancelled
		api
	)

	var code int
	var apiErr = new(internalclient.APIError)

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = cancelled
	case errors.As(err, &apiErr):
		code = api
	default:
		code = internal
	}

	cmd.PrintErrln(err)
	os.Exit(code)
}
