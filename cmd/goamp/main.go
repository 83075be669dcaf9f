package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/2x3systems/goamp/goamp"
	"github.com/2x3systems/goamp/libamp"
	"github.com/2x3systems/goamp/libamp/checkpoint"
	"github.com/2x3systems/goamp/libamp/oracle"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

var (
	cubeDim     = flag.Int("k", 2, "hypercube dimension (1..5)")
	outString   = flag.String("s", "", "output bit string, qubit 0 first (default all zeros)")
	circuitPath = flag.String("circuit", "", "circuit file to walk instead of the hypercube")
	numParts    = flag.Int("parts", 0, "schedule partitions (0 = one per CPU)")
	maxWorkers  = flag.Int("workers", 0, "max concurrent partitions (0 = no limit)")
	quickMode   = flag.String("quick", "off", "parity pre-filter: off, on, or checked")
	evalMode    = flag.String("eval", "linear", "slice evaluator: linear or expsum")
	verify      = flag.Bool("verify", false, "compare against the brute-force state vector")
	ckptPath    = flag.String("ckpt", "", "checkpoint db path; resumes a previous run of the same job")
	ckptEvery   = flag.Uint64("ckpt-every", 1<<16, "steps between checkpoint saves")
	chartPath   = flag.String("chart", "", "write a partial-sum bar chart (html) to this path")
	printPoly   = flag.Bool("print", false, "print the circuit, polynomial, and classified tables")
	pyScript    = flag.String("py", "", "run a python script in the embedded interpreter ('-' for a REPL)")
	logLevel    = flag.Int("log-v", 1, "log verbosity")
)

func main() {
	flag.Parse()

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", strconv.Itoa(*logLevel))
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	if *pyScript != "" {
		pathname := *pyScript
		if pathname == "-" {
			pathname = ""
		}
		go_gpython(pathname)
		klog.Flush()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx)
	stop()
	if err != nil {
		klog.Fatalf("goamp: %v", err)
	}
	klog.Flush()
}

func loadCircuit() (*libamp.Circuit, string, error) {
	if *circuitPath != "" {
		buf, err := os.ReadFile(*circuitPath)
		if err != nil {
			return nil, "", err
		}
		c, err := libamp.ParseCircuit(string(buf))
		if err != nil {
			return nil, "", errors.Wrap(err, *circuitPath)
		}
		return c, *circuitPath, nil
	}
	c, err := libamp.Hypercube(*cubeDim)
	return c, fmt.Sprintf("hypercube k=%d", *cubeDim), err
}

func loadWalkOpts() (goamp.WalkOpts, error) {
	opts := goamp.DefaultWalkOpts
	opts.Parts = *numParts
	opts.MaxWorkers = *maxWorkers

	var err error
	if opts.QuickReject, err = goamp.ParseQuickReject(*quickMode); err != nil {
		return opts, err
	}
	if opts.Evaluator, err = goamp.ParseEvalKind(*evalMode); err != nil {
		return opts, err
	}
	return opts, nil
}

func run(ctx context.Context) error {
	c, source, err := loadCircuit()
	if err != nil {
		return err
	}
	p, err := c.Build()
	if err != nil {
		return err
	}
	if *printPoly {
		c.WriteAsString(os.Stdout)
		p.WriteAsString(os.Stdout, goamp.PrintOpts{
			Label:     source,
			Monomials: true,
			Tables:    true,
		})
	}

	s := make(goamp.BitString, p.NumQubits())
	if *outString != "" {
		if s, err = goamp.ParseBitString(*outString); err != nil {
			return err
		}
	}

	walkOpts, err := loadWalkOpts()
	if err != nil {
		return err
	}
	tables, err := libamp.Classify(p)
	if err != nil {
		return err
	}
	w, err := libamp.NewWalker(tables, s, walkOpts)
	if err != nil {
		return err
	}

	sum := &summary{
		Source:       source,
		NumNodes:     p.NumNodes(),
		NumMonomials: p.Len(),
		Out:          s,
		Opts:         walkOpts,
	}

	klog.V(1).Infof("walking %s: %d positions, %v", source, w.NumPositions(), walkOpts)
	startTime := time.Now()
	if *ckptPath != "" {
		sum.Report, err = walkCheckpointed(ctx, w, *ckptPath, *ckptEvery)
	} else {
		sum.Report, err = w.Walk(ctx)
	}
	if err != nil {
		return err
	}
	sum.Elapsed = time.Since(startTime)

	if *verify {
		if p.NumQubits() > goamp.MaxBruteForceQubits {
			klog.Warningf("skipping brute force: %d qubits exceeds %d", p.NumQubits(), goamp.MaxBruteForceQubits)
		} else {
			sum.BruteForce, err = oracle.Amplitude(p, s)
			if err != nil {
				return err
			}
			sum.Verified = true
		}
	}

	fmt.Println(renderSummary(sum))

	if *chartPath != "" {
		if err = writeChart(*chartPath, sum); err != nil {
			return err
		}
		klog.V(1).Infof("wrote %s", *chartPath)
	}
	return nil
}

// walkCheckpointed walks w against the checkpoint db at pathname.  The db is closed before
// returning, and a failed close is reported when the walk itself succeeded.
func walkCheckpointed(ctx context.Context, w *libamp.Walker, pathname string, every uint64) (*libamp.Report, error) {
	store, err := checkpoint.Open(checkpoint.Opts{DbPathName: pathname})
	if err != nil {
		return nil, err
	}
	rpt, err := w.WalkCheckpointed(ctx, store, every)
	if closeErr := store.Close(); err == nil && closeErr != nil {
		err = errors.Wrapf(closeErr, "closing checkpoint db %q", pathname)
	}
	if err != nil {
		return nil, err
	}
	return rpt, nil
}
