// Command hbadm administers a ledger deployment: it generates signing
// keypairs and composes the genesis configuration batch.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/hashblock/hbledger"
	"github.com/hashblock/hbledger/assemble"
	"github.com/hashblock/hbledger/govern"
	"github.com/hashblock/hbledger/local"
	"github.com/hashblock/hbledger/signing"
)

const usage = `usage: hbadm <command> [flags] [args]

commands:
  genesis  compose the genesis configuration batch
  keygen   generate a signing keypair
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	var err error
	switch args[0] {
	case "genesis":
		err = cmdGenesis(args[1:], out)
	case "keygen":
		err = cmdKeygen(args[1:], out)
	default:
		fmt.Fprint(os.Stderr, usage)
		return 1
	}
	if err != nil {
		return fail(err)
	}
	return 0
}

func fail(err error) int {
	if isCoreError(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n%s", err, debug.Stack())
	return 1
}

func isCoreError(err error) bool {
	if _, ok := hbledger.IsInvalidArgument(err); ok {
		return true
	}
	if _, ok := hbledger.IsPreconditionFailed(err); ok {
		return true
	}
	if _, ok := hbledger.IsIOError(err); ok {
		return true
	}
	if _, ok := hbledger.IsExternalServiceError(err); ok {
		return true
	}
	return false
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint(*s) }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdGenesis(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("genesis", flag.ExitOnError)
	key := fs.String("k", "", "signing key file (default ~/.hashblock/keys/root.priv)")
	output := fs.String("o", "genesis.batch", "destination file for the genesis batch list")
	var authorized stringList
	fs.Var(&authorized, "A", "authorized public key, repeatable")
	threshold := fs.Int("T", 0, "approval threshold, omit to leave the setting unset")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Parse(args)

	log := zap.NewNop()
	if *verbose {
		if dev, err := zap.NewDevelopment(); err == nil {
			log = dev
		}
	}

	path := *key
	if path == "" {
		var err error
		path, err = signing.DefaultKeyPath("root")
		if err != nil {
			return err
		}
	}
	signer, err := signing.LoadKeyFile(path)
	if err != nil {
		return err
	}

	// An explicit -T must reach validation even when its value is 0,
	// so presence is detected rather than compared against a default.
	var thresholdArg *int
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "T" {
			thresholdArg = threshold
		}
	})
	list, err := govern.BuildGenesisBatch(signer, authorized, thresholdArg)
	if err != nil {
		return err
	}
	serialized, err := assemble.Serialize(list)
	if err != nil {
		return err
	}

	sink := local.NewSink(*output)
	if err := sink.SendBatches(context.Background(), serialized); err != nil {
		return err
	}
	log.Info("genesis batch written",
		zap.String("path", sink.Path()),
		zap.Int("transactions", len(list.Batches[0].Transactions)))
	fmt.Fprintf(out, "Generated %s\n", sink.Path())
	return nil
}

func cmdKeygen(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	keyDir := fs.String("key-dir", "", "key directory (default ~/.hashblock/keys)")
	force := fs.Bool("force", false, "overwrite existing key files")
	quiet := fs.Bool("q", false, "suppress output")
	fs.Parse(args)

	name := "root"
	switch fs.NArg() {
	case 0:
	case 1:
		name = fs.Arg(0)
	default:
		return hbledger.NewInvalidArgument("keygen takes at most one key name")
	}

	dir := *keyDir
	if dir == "" {
		var err error
		dir, err = signing.DefaultKeyDir()
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return hbledger.NewIOError("unable to create key directory", dir, err)
	}

	signer, err := signing.Generate()
	if err != nil {
		return err
	}
	privPath, pubPath, err := signing.WriteKeyFiles(signer, dir, name, *force)
	if err != nil {
		return err
	}
	if !*quiet {
		fmt.Fprintf(out, "writing file: %s\n", privPath)
		fmt.Fprintf(out, "writing file: %s\n", pubPath)
	}
	return nil
}
