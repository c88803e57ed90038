// Command fsmdemo drives the locomotion state machine from scripts, an
// interactive prompt, an HTTP inspector or a parallel fleet.
package main

import (
	"context"

	"github.com/amp-labs/tickfsm/logger"
	"github.com/amp-labs/tickfsm/shutdown"
)

func main() {
	ctx, stop := shutdown.SetupHandler(context.Background())

	err := newRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		logger.Fatal("fsmdemo failed", "error", logger.AnnotateBuildError(err))
	}
}
