package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	log.SetFlags(0)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdout, os.Stderr, os.Getenv)
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		log.Printf("usagex: %v", err)
		stop()
		os.Exit(exitCode(err))
	}
}
