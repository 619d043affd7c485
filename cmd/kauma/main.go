// Command kauma runs a batch JSON job file of cryptanalysis test
// cases against the core packages (gf128, gfpoly, gcm, gcmcrack,
// paddingoracle, batchgcd) and writes one reply per line to stdout.
//
// This is the "external collaborator" layer spec.md explicitly scopes
// out of the core: JSON parsing, CLI flags, the action dispatch table,
// and diagnostics. Kept thin and undocumented the way the teacher's
// own examples/*.go demo files are thin func main() wrappers around
// its library packages.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/kauma/kauma-go/codec"
	"github.com/kauma/kauma-go/errs"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("kauma: ")

	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout for the padding-oracle client")
	seed := flag.Int64("seed", 0, "deterministic RNG seed for EDF trial polynomials (0 = cryptographically random)")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: kauma <job-file.json>")
	}

	globalTimeout = *timeout

	if err := run(flag.Arg(0), *seed); err != nil {
		log.Fatalf("%v", err)
	}
}

// globalTimeout bounds the padding-oracle client's dial (via
// paddingOracleContext) and each of its requests; it is the one piece
// of process-wide state the CLI layer carries, deliberately kept out
// of the core packages themselves per spec.md §5.
var globalTimeout time.Duration

func paddingOracleContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), globalTimeout)
}

func netJoinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func run(jobPath string, seed int64) error {
	f, err := os.Open(jobPath)
	if err != nil {
		return err
	}
	defer f.Close()

	cases, err := codec.ReadJob(f)
	if err != nil {
		return err
	}

	for _, tc := range cases {
		reply := runCase(tc, seed)
		if err := codec.WriteReply(os.Stdout, reply); err != nil {
			return err
		}
	}
	return nil
}

// runCase dispatches one test case and converts any core error into a
// diagnostic reply field, per spec.md §7's propagation policy: errors
// never abort the batch, they become part of that case's reply.
func runCase(tc codec.Testcase, seed int64) codec.Reply {
	handler, ok := dispatch[tc.Action]
	if !ok {
		log.Printf("case %q: unknown action %q", tc.ID, tc.Action)
		return codec.Reply{ID: tc.ID, Reply: codec.ErrorReply{Error: "unknown action: " + tc.Action}}
	}

	result, err := handler(tc.Arguments, seed)
	if err != nil {
		log.Printf("case %q: %v", tc.ID, err)
		return codec.Reply{ID: tc.ID, Reply: codec.ErrorReply{Error: errorDiagnostic(err)}}
	}
	return codec.Reply{ID: tc.ID, Reply: result}
}

func errorDiagnostic(err error) string {
	if kind, ok := errs.KindOf(err); ok {
		return kind.String() + ": " + err.Error()
	}
	return err.Error()
}
