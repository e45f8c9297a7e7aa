package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"
	"github.com/fahmaliyi/passkeeper/cli"
)

func main() {
	memguard.CatchInterrupt()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.Options{})
	stop()

	memguard.Purge()
	os.Exit(code)
}
