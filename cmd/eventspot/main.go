package main

import (
	"os"
	"os/signal"
	"syscall"

	"eventspot/cli"
	c "eventspot/context"
	"eventspot/output"
)

var (
	version = "dev"
)

const defaultCorrelationID = "00000000.00000000"

func main() {
	ctx := c.NewContext(defaultCorrelationID)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(version, os.Stdin, os.Stdout, os.Stderr, output.UseColors())
	if err := app.Execute(ctx, os.Args[1:]); err != nil {
		stop()
		os.Exit(1)
	}
}
