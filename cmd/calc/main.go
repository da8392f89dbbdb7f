// Command calc evaluates arithmetic expressions.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	calccmd "github.com/zephyrtronium/calc/internal/cmd/calc"
)

func main() {
	log.SetFlags(0)
	cfg, err := calccmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("calc: ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := calccmd.Run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
