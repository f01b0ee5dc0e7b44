// bpreplay replays a recorded decoder trace against a backpointer table and
// prints the surviving entries, the best path and the table statistics.
//
// A trace is a YAML document naming the phone set, the triphones the model
// knows, the words used, and the PushFrame and Enter calls of every frame.
// A dictionary and model can also be loaded from files with --dict,
// --filler and --model; inline trace words are added on top.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/ieee0824/bptbl-go/acoustic"
	"github.com/ieee0824/bptbl-go/bptable"
	"github.com/ieee0824/bptbl-go/lexicon"
	"github.com/ieee0824/bptbl-go/phonectx"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var (
		tracePath  string
		dictPath   string
		fillerPath string
		modelPath  string
		verbose    bool
		noDump     bool
	)

	flagSet := pflag.NewFlagSet("bpreplay", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&tracePath, "trace", "", "path to YAML trace (required)")
	flagSet.StringVar(&dictPath, "dict", "", "path to pronunciation dictionary (TSV)")
	flagSet.StringVar(&fillerPath, "filler", "", "path to filler dictionary (TSV)")
	flagSet.StringVar(&modelPath, "model", "", "path to saved triphone model")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log table activity to stderr")
	flagSet.BoolVar(&noDump, "no-dump", false, "do not print live entries")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if tracePath == "" {
		return fmt.Errorf("--trace is required")
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	tr, err := LoadTraceFile(tracePath)
	if err != nil {
		return err
	}
	if err := tr.Validate(); err != nil {
		return fmt.Errorf("invalid trace: %w", err)
	}

	var base *acoustic.Model
	if modelPath != "" {
		f, err := os.Open(modelPath)
		if err != nil {
			return err
		}
		base, err = acoustic.Load(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
	}
	model, err := tr.Model(base)
	if err != nil {
		return err
	}

	dict := lexicon.NewDictionary()
	if dictPath != "" {
		if dict, err = lexicon.LoadFile(dictPath); err != nil {
			return fmt.Errorf("load dictionary: %w", err)
		}
	}
	if fillerPath != "" {
		f, err := os.Open(fillerPath)
		if err != nil {
			return err
		}
		err = dict.LoadFiller(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("load filler dictionary: %w", err)
		}
	}
	tr.AddWords(dict)

	ctx, err := phonectx.New(dict, model)
	if err != nil {
		return err
	}
	defer ctx.Release()

	tb := bptable.New(ctx, bptable.WithConfig(tr.Table), bptable.WithLogger(logger))
	defer tb.Close()

	if err := replay(tr, tb, dict); err != nil {
		return err
	}

	if !noDump {
		if err := tb.Dump(stdout); err != nil {
			return err
		}
	}
	if res, ok := tb.BestPath(); ok {
		fmt.Fprintf(stdout, "best: %s (score %.4f)\n", res.Text, res.LogScore)
		for _, w := range res.Words {
			fmt.Fprintf(stdout, "  [%d-%d] %s\n", w.StartFrame, w.EndFrame, w.Text)
		}
	} else {
		fmt.Fprintln(stdout, "best: <none>")
	}

	st := tb.Stats()
	fmt.Fprintf(stdout, "entries=%d live=%d window=%d collections=%d retired=%d reactivated=%d\n",
		tb.Len(), tb.LiveSet().GetCardinality(), tb.WindowStart(),
		st.Collections, st.Retired, st.Reactivated)

	if err := tb.Check(); err != nil {
		return fmt.Errorf("table check failed: %w", err)
	}
	return nil
}

// replay turns a contract violation inside the table into an error so a
// bad trace is reported instead of crashing.
func replay(tr *Trace, tb *bptable.Table, dict *lexicon.Dictionary) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("replay: %v", r)
		}
	}()
	_, err = tr.Replay(tb, dict)
	return err
}
