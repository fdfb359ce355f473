package main

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/payload-codec/payment"
	"github.com/wippyai/payload-codec/schema"
	"github.com/wippyai/payload-codec/transcoder"
	"github.com/wippyai/payload-codec/verifier"
)

type options struct {
	instruction string
	seed        string
	amount      string
	fee         string
	status      string
	shopWallet  string
	hexWallet   string
	format      string
	currency    string
	verify      string
	entry       string
	program     string
	transfer    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.instruction, "instruction", "1", "Instruction byte (0 = transfer, 1 = create payment)")
	flag.StringVar(&opts.seed, "seed", "", "Payment seed")
	flag.StringVar(&opts.amount, "amount", "0", "Amount in base units (u64)")
	flag.StringVar(&opts.fee, "fee", "0", "Fee rate as a decimal number")
	flag.StringVar(&opts.status, "status", payment.StatusPending, "Payment status")
	flag.StringVar(&opts.shopWallet, "shop", "", "Shop wallet")
	flag.StringVar(&opts.hexWallet, "hex", "", "Hex (service fee) wallet")
	flag.StringVar(&opts.format, "format", "", "Output format: hex, base64 or raw (default hex on a terminal, raw otherwise)")
	flag.BoolVar(&opts.transfer, "transfer", false, "Encode a transfer instruction instead of a payment")
	flag.StringVar(&opts.currency, "currency", "sol", "Transfer currency: sol or spl")
	flag.StringVar(&opts.verify, "verify", "", "Path to a verifier wasm module")
	flag.StringVar(&opts.entry, "func", verifier.DefaultEntry, "Verifier entry function")
	flag.StringVar(&opts.program, "program", "", "Program ID; prints the payment account derived from the seed")
	var (
		schemaOnly  = flag.Bool("schema", false, "Print the payload schema and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	transcoder.SetLogger(log)
	verifier.SetLogger(log)

	if *schemaOnly {
		printSchema(os.Stdout)
		return
	}

	if *interactive {
		if err := runInteractive(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if opts.format == "" {
		opts.format = "raw"
		if term.IsTerminal(int(os.Stdout.Fd())) {
			opts.format = "hex"
		}
	}

	if err := run(context.Background(), opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	data, err := encode(opts)
	if err != nil {
		return err
	}

	if opts.program != "" && !opts.transfer {
		programID, err := solana.PublicKeyFromBase58(opts.program)
		if err != nil {
			return fmt.Errorf("program id: %w", err)
		}
		account, bump, err := payment.DeriveAccount(opts.seed, programID)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Payment account: %s (bump %d)\n", account, bump)
	}

	if opts.verify != "" {
		if err := verify(ctx, opts.verify, opts.entry, data); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Verified by %s:%s\n", opts.verify, opts.entry)
	}

	return writeOutput(stdout, data, opts.format)
}

func encode(opts options) ([]byte, error) {
	if opts.transfer {
		currency, err := parseCurrency(opts.currency)
		if err != nil {
			return nil, err
		}
		return payment.TransferInstruction(currency)
	}
	return payment.Input{
		Instruction: opts.instruction,
		Seed:        opts.seed,
		Amount:      opts.amount,
		Fee:         opts.fee,
		Status:      opts.status,
		ShopWallet:  opts.shopWallet,
		HexWallet:   opts.hexWallet,
	}.Encode()
}

func verify(ctx context.Context, wasmFile, entry string, data []byte) error {
	wasmBytes, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	v, err := verifier.New(ctx, wasmBytes, &verifier.Config{Entry: entry})
	if err != nil {
		return err
	}
	defer v.Close(ctx)
	return v.Verify(ctx, data)
}

func parseCurrency(s string) (payment.Currency, error) {
	switch strings.ToLower(s) {
	case "sol", "0":
		return payment.CurrencySol, nil
	case "spl", "1":
		return payment.CurrencySpl, nil
	}
	return 0, fmt.Errorf("unknown currency %q (want sol or spl)", s)
}

func writeOutput(w io.Writer, data []byte, format string) error {
	var err error
	switch format {
	case "hex":
		_, err = fmt.Fprintln(w, hex.EncodeToString(data))
	case "base64":
		_, err = fmt.Fprintln(w, base64.StdEncoding.EncodeToString(data))
	case "raw":
		_, err = w.Write(data)
	default:
		return fmt.Errorf("unknown format %q (want hex, base64 or raw)", format)
	}
	return err
}

func printSchema(w io.Writer) {
	for _, s := range []*schema.Schema{schema.Payment(), schema.Transfer()} {
		fmt.Fprint(w, s.Describe())

		layout := s.Layout()
		fmt.Fprintf(w, "\n%-18s %-8s %s\n", "field", "type", "offset")
		for i, f := range s.Fields() {
			offset := "variable"
			if layout.Offsets[i] >= 0 {
				offset = fmt.Sprintf("%d", layout.Offsets[i])
			}
			fmt.Fprintf(w, "%-18s %-8s %s\n", f.Name, f.Type(), offset)
		}
		fmt.Fprintf(w, "size: %d + string bytes\n\n", layout.MinSize)
	}
}
