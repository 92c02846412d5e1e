package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectdiscovery/arpscan/internal/runner"
	"github.com/projectdiscovery/gologger"
)

func main() {
	options := runner.ParseOptions()

	arpRunner, err := runner.NewRunner(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the first signal ends the scan with partial results, the second exits
	go func() {
		<-c
		gologger.Info().Msgf("Ctrl+C pressed in Terminal, finishing scan")
		cancel()
		<-c
		os.Exit(1)
	}()

	if err := arpRunner.Run(ctx); err != nil {
		gologger.Fatal().Msgf("Could not run arpscan: %s\n", err)
	}
}
