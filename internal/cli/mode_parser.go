package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

const (
	ModePayment  = "payment-worker"
	ModeDelivery = "delivery-worker"
	ModeConsumer = "order-consumer"
)

// isKnownMode checks if the provided mode name is known.
func isKnownMode(s string) (string, bool) {
	switch s {
	case ModePayment, "payment":
		return ModePayment, true
	case ModeDelivery, "delivery":
		return ModeDelivery, true
	case ModeConsumer, "consumer":
		return ModeConsumer, true
	default:
		return "", false
	}
}

// ParseMode supports:
//
//	--mode=<value>
//	<value> (subcommand shorthand), e.g., `payment-worker --delay=1`
func ParseMode(args []string) (string, []string, error) {
	var mode string
	var out []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "--mode=") {
			mode = strings.TrimPrefix(arg, "--mode=")
			continue
		}

		if mode == "" {
			if m, ok := isKnownMode(arg); ok {
				mode = m
				continue
			}
		}
		out = append(out, arg)
	}

	if mode == "" {
		return "", out, nil
	}

	m, ok := isKnownMode(mode)
	if !ok {
		return "", out, fmt.Errorf("unknown mode %q", mode)
	}

	return m, out, nil
}

// PrintUsage prints the usage information with examples.
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage:
  ./food-delivery --mode=<service> [flags]

Services (modes):
  payment-worker     consumes payment requests and emits payment/delivery events
  delivery-worker    consumes delivery triggers, creates deliveries, estimates routes
  order-consumer     applies payment and delivery events to order status

Examples:
  ./food-delivery --mode=payment-worker --delay=3
  ./food-delivery --mode=delivery-worker
  ./food-delivery --mode=order-consumer`)
}

// AttachUsage wires a per-mode usage message into the flag set.
func AttachUsage(fs *flag.FlagSet, mode string) {
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: ./food-delivery --mode=%s [flags]\n", mode)
		fs.PrintDefaults()
	}
}
