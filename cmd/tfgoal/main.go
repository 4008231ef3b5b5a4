// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// tfgoal drives a Terraform goal through plan, approval and apply, one
// invocation at a time. A goal that waits for approval returns a
// continuation token which a later invocation resumes from.
// For details on how to use it just run:
//
//	tfgoal --help
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/ui/tui"
)

func main() {
	cli, err := tui.NewCLI()
	if err != nil {
		panic(errors.E(errors.ErrInternal, err, "unexpected error"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := cli.Exec(ctx, os.Args[1:])
	stop()
	os.Exit(int(status))
}
