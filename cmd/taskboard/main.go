// Package main starts the taskboard command line.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	taskboardcmd "github.com/louisbranch/taskboard/internal/cmd/taskboard"
)

func main() {
	cfg, err := taskboardcmd.LoadConfig(".env")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.SetPrefix("[TASKBOARD] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := taskboardcmd.NewRootCmd(&cfg, os.Stdout).ExecuteContext(ctx); err != nil {
		log.Fatalf("taskboard: %v", err)
	}
}
