// Command hbevents builds and submits ledger event transactions:
// initiating events, reciprocating events, and listings of pending
// configuration proposals.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"gopkg.in/yaml.v3"

	"github.com/hashblock/hbledger"
	"github.com/hashblock/hbledger/address"
	"github.com/hashblock/hbledger/assemble"
	"github.com/hashblock/hbledger/govern"
	hbgrpc "github.com/hashblock/hbledger/grpc"
	"github.com/hashblock/hbledger/local"
	"github.com/hashblock/hbledger/match"
	"github.com/hashblock/hbledger/rest"
	"github.com/hashblock/hbledger/signing"
	"github.com/hashblock/hbledger/types"
)

const usage = `usage: hbevents <command> [flags] [args]

commands:
  initiate     build and submit an initiating event
  reciprocate  build and submit a reciprocating event
  list         list pending configuration proposals
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
	case "initiate":
		err = cmdInitiate(args[1:], out)
	case "reciprocate":
		err = cmdReciprocate(args[1:], out)
	case "list":
		err = cmdList(args[1:], out)
	default:
		fmt.Fprint(os.Stderr, usage)
		return 1
	}
	if err != nil {
		return fail(err)
	}
	return 0
}

// fail converts an error into an exit status: known error kinds get a
// single-line message, anything unexpected gets a full trace.
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

// commonFlags are shared by every subcommand.
type commonFlags struct {
	key      string
	output   string
	url      string
	grpcAddr string
	verbose  bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.key, "k", "", "signing key file (default ~/.hashblock/keys/root.priv)")
	fs.StringVar(&c.key, "key", "", "signing key file")
	fs.StringVar(&c.output, "output", "", "write the batch list to a file instead of submitting")
	fs.StringVar(&c.url, "url", "", "validator REST endpoint (e.g. "+rest.DefaultURL+")")
	fs.StringVar(&c.grpcAddr, "grpc", "", "validator gRPC endpoint")
	fs.BoolVar(&c.verbose, "v", false, "verbose logging")
}

func (c *commonFlags) logger() *zap.Logger {
	if !c.verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func (c *commonFlags) signer() (*signing.KeySigner, error) {
	path := c.key
	if path == "" {
		var err error
		path, err = signing.DefaultKeyPath("root")
		if err != nil {
			return nil, err
		}
	}
	return signing.LoadKeyFile(path)
}

// submitter resolves the batch destination. A file output, a
// validator REST URL, and a validator gRPC endpoint are mutually
// exclusive; one of them must be chosen.
func (c *commonFlags) submitter() (hbledger.BatchSubmitter, error) {
	targets := 0
	for _, t := range []string{c.output, c.url, c.grpcAddr} {
		if t != "" {
			targets++
		}
	}
	if targets > 1 {
		return nil, hbledger.NewInvalidArgument("--output, --url and --grpc are mutually exclusive")
	}
	switch {
	case c.output != "":
		return local.NewSink(c.output), nil
	case c.url != "":
		return rest.New(c.url, rest.WithLogger(c.logger()))
	case c.grpcAddr != "":
		return c.dialGRPC()
	default:
		return nil, hbledger.NewPreconditionFailed("no submission target selected, use --output, --url or --grpc")
	}
}

// reader resolves the state-read endpoint: the gRPC endpoint when
// --grpc is given, otherwise REST, defaulting to the conventional
// endpoint when --url is not given either.
func (c *commonFlags) reader() (hbledger.StateReader, error) {
	if c.grpcAddr != "" {
		return c.dialGRPC()
	}
	url := c.url
	if url == "" {
		url = rest.DefaultURL
	}
	return rest.New(url, rest.WithLogger(c.logger()))
}

func (c *commonFlags) dialGRPC() (*hbgrpc.Client, error) {
	return hbgrpc.Dial(context.Background(), c.grpcAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func submit(ctx context.Context, submitter hbledger.BatchSubmitter, signer hbledger.Signer, txns ...types.Transaction) error {
	batch, err := assemble.NewBatch(signer, txns)
	if err != nil {
		return err
	}
	serialized, err := assemble.Serialize(assemble.NewBatchList(batch))
	if err != nil {
		return err
	}
	return submitter.SendBatches(ctx, serialized)
}

func cmdInitiate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("initiate", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	verb := fs.String("verb", address.VerbAsk, "operation verb of the initiating event")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return hbledger.NewInvalidArgument("initiate takes exactly one [value][unit][resource] vector")
	}
	quantity, err := match.ParseQuantity(fs.Arg(0))
	if err != nil {
		return err
	}

	signer, err := common.signer()
	if err != nil {
		return err
	}
	submitter, err := common.submitter()
	if err != nil {
		return err
	}

	txn, leaf, err := match.BuildInitiate(signer, *verb, match.NewIdentifier(), quantity)
	if err != nil {
		return err
	}
	if err := submit(context.Background(), submitter, signer, txn); err != nil {
		return err
	}
	fmt.Fprintln(out, leaf)
	return nil
}

func cmdReciprocate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("reciprocate", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	verb := fs.String("verb", address.VerbTell, "operation verb of the reciprocating event")
	fs.Parse(args)

	if fs.NArg() != 4 {
		return hbledger.NewInvalidArgument(
			"reciprocate takes an event address and 3 quantity vectors (quantity, ratio numerator, ratio denominator)")
	}
	initiateAddr := fs.Arg(0)
	quantity, ratio, err := match.ParseQuantityRatio(fs.Args()[1:])
	if err != nil {
		return err
	}

	signer, err := common.signer()
	if err != nil {
		return err
	}
	reader, err := common.reader()
	if err != nil {
		return err
	}
	submitter, err := common.submitter()
	if err != nil {
		return err
	}

	ctx := context.Background()
	txn, leaf, err := match.BuildReciprocate(ctx, signer, reader, *verb, initiateAddr, quantity, ratio)
	if err != nil {
		return err
	}
	if err := submit(ctx, submitter, signer, txn); err != nil {
		return err
	}
	fmt.Fprintln(out, leaf)
	return nil
}

func cmdList(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	filter := fs.String("filter", "", "show only proposals whose code starts with this prefix")
	publicKey := fs.String("public-key", "", "show only proposals proposed with this public key")
	format := fs.String("format", "default", "output format: default, csv, json, yaml")
	fs.Parse(args)

	reader, err := common.reader()
	if err != nil {
		return err
	}
	candidates, err := govern.FetchCandidates(context.Background(), reader)
	if err != nil {
		return err
	}
	selected := govern.ListCandidates(candidates.Candidates, *publicKey, *filter)
	return writeCandidates(out, selected, *format)
}

func writeCandidates(out io.Writer, candidates []types.EventCandidate, format string) error {
	switch format {
	case "default":
		for _, c := range candidates {
			fmt.Fprintf(out, "%s: %s => %s\n", c.ProposalID, c.Proposal.Code, c.Proposal.Value)
		}
		return nil
	case "csv":
		w := csv.NewWriter(out)
		if err := w.Write([]string{"PROPOSAL_ID", "CODE", "VALUE"}); err != nil {
			return err
		}
		for _, c := range candidates {
			if err := w.Write([]string{c.ProposalID, c.Proposal.Code, c.Proposal.Value}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(candidateRows(candidates))
	case "yaml":
		data, err := yaml.Marshal(candidateRows(candidates))
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		return hbledger.NewInvalidArgument("unknown output format %q", format)
	}
}

// candidateRows projects candidates into an object keyed by proposal
// id, each entry mapping the proposal code to its value. json and
// yaml both emit map keys sorted.
func candidateRows(candidates []types.EventCandidate) map[string]map[string]string {
	rows := make(map[string]map[string]string, len(candidates))
	for _, c := range candidates {
		rows[c.ProposalID] = map[string]string{c.Proposal.Code: c.Proposal.Value}
	}
	return rows
}
