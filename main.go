package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fooddelivery/cmd/deliveryworker"
	"fooddelivery/cmd/orderconsumer"
	"fooddelivery/cmd/paymentworker"
	"fooddelivery/internal/cli"
)

func main() {
	// check for help flag first
	if len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		cli.PrintUsage(os.Stdout)
		os.Exit(0)
	}

	mode, svcArgs, err := cli.ParseMode(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cli.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	if mode == "" {
		cli.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	// context cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch mode {
	case cli.ModePayment:
		fs := flag.NewFlagSet(cli.ModePayment, flag.ContinueOnError)
		delay := fs.Int("delay", -1, "Simulated gateway delay in seconds (overrides PAYMENT_DELAY_SECONDS)")
		cli.AttachUsage(fs, cli.ModePayment)

		if err := fs.Parse(svcArgs); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}

		if err := paymentworker.Run(ctx, *delay); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

	case cli.ModeDelivery:
		fs := flag.NewFlagSet(cli.ModeDelivery, flag.ContinueOnError)
		cli.AttachUsage(fs, cli.ModeDelivery)

		if err := fs.Parse(svcArgs); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}

		if err := deliveryworker.Run(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

	case cli.ModeConsumer:
		fs := flag.NewFlagSet(cli.ModeConsumer, flag.ContinueOnError)
		cli.AttachUsage(fs, cli.ModeConsumer)

		if err := fs.Parse(svcArgs); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}

		if err := orderconsumer.Run(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}
}
