package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mobile-next/touchcli/cli"
	"github.com/mobile-next/touchcli/commands"
	"github.com/mobile-next/touchcli/devices"
	"github.com/mobile-next/touchcli/utils"
)

func main() {
	registry, err := devices.NewDeviceRegistry(devices.DefaultMaxSessions)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	commands.SetRegistry(registry)

	shutdown := devices.NewShutdownHook()
	shutdown.RegisterRegistry(registry)

	// setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// run command in goroutine
	done := make(chan error, 1)
	go func() {
		done <- cli.Execute()
	}()

	// wait for command completion or signal
	select {
	case sig := <-sigChan:
		utils.Verbose("Received %v, stopping helper sessions", sig)
		if err := shutdown.Shutdown(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	case err := <-done:
		if shutdownErr := shutdown.Shutdown(); shutdownErr != nil {
			utils.Warn("failed to stop helper sessions: %v", shutdownErr)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
