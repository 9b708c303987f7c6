package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/profile"

	"ipdevo/internal/evo"
	"ipdevo/internal/storage"
	"ipdevo/internal/strategy"
	"ipdevo/pkg/ipdevo"
)

const (
	benchmarksDir = "benchmarks"
	exportsDir    = "exports"
	defaultDBPath = "ipdevo.db"
)

var (
	profileMode = flag.String("profile", "", "write a profile for the command: cpu|mem")
	profileDir  = flag.String("profile-dir", ".", "profile output directory")
)

func main() {
	_ = flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	stop, err := startProfile(*profileMode, *profileDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err = run(context.Background(), flag.Args(), os.Stdout)
	stop()
	if err != nil {
		glog.Flush()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func startProfile(mode, dir string) (func(), error) {
	var opt func(*profile.Profile)
	switch mode {
	case "":
		return func() {}, nil
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfile
	default:
		return nil, fmt.Errorf("unsupported profile mode: %s", mode)
	}
	p := profile.Start(opt, profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook)
	return p.Stop, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:], out)
	case "train":
		return runTrain(ctx, args[1:], out)
	case "evaluate":
		return runEvaluate(ctx, args[1:], out)
	case "table":
		return runTable(ctx, args[1:], out)
	case "weights":
		return runWeights(ctx, args[1:], out)
	case "match":
		return runMatch(ctx, args[1:], out)
	case "runs":
		return runRuns(ctx, args[1:], out)
	case "lineage":
		return runLineage(ctx, args[1:], out)
	case "fitness":
		return runFitness(ctx, args[1:], out)
	case "diagnostics":
		return runDiagnostics(ctx, args[1:], out)
	case "export":
		return runExport(ctx, args[1:], out)
	case "references":
		for _, name := range strategy.ReferenceNames() {
			fmt.Fprintln(out, name)
		}
		return nil
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

type storeFlags struct {
	kind          *string
	dbPath        *string
	benchmarksDir *string
}

func addStoreFlags(fs *flag.FlagSet) storeFlags {
	return storeFlags{
		kind:          fs.String("store", storage.DefaultStoreKind, "store backend: memory|sqlite|leveldb (memory is not kept between invocations)"),
		dbPath:        fs.String("db-path", defaultDBPath, "sqlite file or leveldb directory"),
		benchmarksDir: fs.String("benchmarks-dir", benchmarksDir, "run artifact directory"),
	}
}

func (f storeFlags) client() (*ipdevo.Client, error) {
	return ipdevo.New(ipdevo.Options{
		StoreKind:     *f.kind,
		DBPath:        *f.dbPath,
		BenchmarksDir: *f.benchmarksDir,
		ExportsDir:    exportsDir,
	})
}

type runFlags struct {
	runID  *string
	latest *bool
}

func addRunFlags(fs *flag.FlagSet) runFlags {
	return runFlags{
		runID:  fs.String("run-id", "", "run id"),
		latest: fs.Bool("latest", false, "use the most recent run"),
	}
}

func runInit(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "initialized store=%s\n", *sf.kind)
	return nil
}

func runTrain(ctx context.Context, args []string, out io.Writer) error {
	defaults := evo.DefaultConfig()

	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config path (.json, .yaml, .yml or .ini)")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	continueRunID := fs.String("continue", "", "continue from a stored run's final population")
	population := fs.Int("pop", defaults.PopulationSize, "population size")
	generations := fs.Int("gens", defaults.Generations, "generation count")
	inputs := fs.Int("inputs", defaults.InputNodes, "network input nodes (history length + 1)")
	hidden := fs.Int("hidden", defaults.HiddenNodes, "network hidden nodes")
	bias := fs.String("bias", string(defaults.HiddenBias), "hidden bias mode: per_row|shared")
	repeats := fs.Int("repeats", defaults.Repeats, "tournament repeats per generation")
	rounds := fs.Int("rounds", defaults.Rounds, "rounds per match")
	pool := fs.Int("pool", defaults.ParentPool, "parent pool size")
	selection := fs.String("selection", defaults.Selector.Name(), "parent selection: cyclic|linear|random")
	entropy := fs.Float64("entropy", float64(defaults.EntropyRange), "extra mutation range for the last offspring")
	workers := fs.Int("workers", 4, "tournament worker count")
	seed := fs.Int64("seed", 1, "rng seed")
	evalRepeats := fs.Int("eval-repeats", evo.DefaultEvaluationRepeats, "final evaluation repeats")
	contenders := fs.Int("contenders", evo.DefaultContenders, "neural strategies in the final evaluation")
	references := fs.String("refs", "", "comma separated fixed strategies for the final evaluation")
	progress := fs.Bool("progress", false, "print one line per generation")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req := ipdevo.TrainRequest{
		RunID:         *runID,
		ContinueRunID: *continueRunID,
		Population:    *population,
		Generations:   *generations,
		InputNodes:    *inputs,
		HiddenNodes:   *hidden,
		HiddenBias:    *bias,
		Repeats:       *repeats,
		Rounds:        *rounds,
		ParentPool:    *pool,
		Selection:     *selection,
		EntropyRange:  *entropy,
		Workers:       *workers,
		Seed:          *seed,
		EvalRepeats:   *evalRepeats,
		Contenders:    *contenders,
		References:    splitNames(*references),
	}
	if *configPath != "" {
		fileReq, err := loadTrainRequest(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		req = mergeTrainRequest(fileReq, req, setFlags)
	}
	if *progress {
		req.Progress = func(report evo.GenerationReport) {
			d := report.Diagnostics
			fmt.Fprintf(out, "generation=%d elite=%s best=%d mean=%.1f range=%.3f\n",
				d.Generation, d.EliteName, d.BestScore, d.MeanScore, d.MutationRange)
		}
	}

	client, err := sf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Train(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "run_id=%s generations=%d final_best=%d best=%s artifacts=%s\n",
		summary.RunID, len(summary.BestByGeneration), summary.FinalBestScore, summary.BestName, summary.ArtifactsDir)
	if summary.ContinuedFrom != "" {
		fmt.Fprintf(out, "continued_from=%s\n", summary.ContinuedFrom)
	}
	for _, entry := range summary.Ranking {
		fmt.Fprintf(out, "%s: %d\n", entry.Name, entry.Score)
	}
	return nil
}

func runEvaluate(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	rf := addRunFlags(fs)
	repeats := fs.Int("repeats", evo.DefaultEvaluationRepeats, "evaluation repeats")
	rounds := fs.Int("rounds", 0, "rounds per match (0 uses the default)")
	contenders := fs.Int("contenders", evo.DefaultContenders, "neural strategies taking part")
	workers := fs.Int("workers", 4, "tournament worker count")
	seed := fs.Int64("seed", 1, "seed for the random reference strategy")
	references := fs.String("refs", "", "comma separated fixed strategies")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	ranking, err := client.Evaluate(ctx, ipdevo.EvaluateRequest{
		RunID:      *rf.runID,
		Latest:     *rf.latest,
		Repeats:    *repeats,
		Rounds:     *rounds,
		Contenders: *contenders,
		Workers:    *workers,
		Seed:       *seed,
		References: splitNames(*references),
	})
	if err != nil {
		return err
	}
	for _, entry := range ranking {
		fmt.Fprintf(out, "%s: %d\n", entry.Name, entry.Score)
	}
	return nil
}

func runTable(ctx context.Context, args []string, out io.Writer) error {
	return runStrategyDump("table", args, out, func(client *ipdevo.Client, req ipdevo.StrategyRequest, w io.Writer) error {
		return client.DecisionTable(ctx, req, w)
	})
}

func runWeights(ctx context.Context, args []string, out io.Writer) error {
	return runStrategyDump("weights", args, out, func(client *ipdevo.Client, req ipdevo.StrategyRequest, w io.Writer) error {
		return client.Weights(ctx, req, w)
	})
}

func runStrategyDump(name string, args []string, out io.Writer, dump func(*ipdevo.Client, ipdevo.StrategyRequest, io.Writer) error) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	rf := addRunFlags(fs)
	strategyID := fs.String("strategy-id", "", "stored strategy id (defaults to the run's best)")
	outPath := fs.String("out", "", "output file (defaults to stdout)")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	req := ipdevo.StrategyRequest{RunID: *rf.runID, Latest: *rf.latest, StrategyID: *strategyID}
	if *outPath == "" {
		return dump(client, req, out)
	}
	file, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	if err := dump(client, req, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func runMatch(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	rf := addRunFlags(fs)
	strategyID := fs.String("strategy-id", "", "stored strategy id (defaults to the run's best)")
	opponent := fs.String("opponent", "tit_for_tat", "fixed opponent strategy")
	rounds := fs.Int("rounds", 0, "rounds (0 uses the default)")
	seed := fs.Int64("seed", 1, "seed for a random opponent")
	transcript := fs.Bool("transcript", false, "print the move transcript")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	report, err := client.Match(ctx, ipdevo.StrategyRequest{RunID: *rf.runID, Latest: *rf.latest, StrategyID: *strategyID}, *opponent, *rounds, *seed)
	if err != nil {
		return err
	}
	result := report.Result
	fmt.Fprintf(out, "neural=%d opponent=%q score=%d rounds=%d\n", result.Score1, report.Opponent, result.Score2, len(result.Turns))
	fmt.Fprintf(out, "last_round=%d last_history=%s\n", report.Last.LastRound, historyDigits(report.Last.LastHistory))
	if *transcript {
		fmt.Fprintln(out, result.Transcript())
	}
	return nil
}

func runRuns(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	runs, err := client.Runs(ctx, ipdevo.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(out, "run_id=%s created_at=%s pop=%d gens=%d seed=%d selection=%s bias=%s final_best=%d winner=%s\n",
			r.RunID, r.CreatedAtUTC, r.Population, r.Generations, r.Seed, r.Selection, r.HiddenBias, r.FinalBestScore, r.Winner)
	}
	return nil
}

func runLineage(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("lineage", flag.ContinueOnError)
	rf := addRunFlags(fs)
	limit := fs.Int("limit", 50, "max records (0 for all)")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	lineage, err := client.Lineage(ctx, ipdevo.RecordsRequest{RunID: *rf.runID, Latest: *rf.latest, Limit: *limit})
	if err != nil {
		return err
	}
	for _, rec := range lineage {
		fmt.Fprintf(out, "generation=%d agent=%s parent=%s operation=%s\n",
			rec.Generation, rec.AgentName, rec.ParentName, rec.Operation)
	}
	return nil
}

func runFitness(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	rf := addRunFlags(fs)
	limit := fs.Int("limit", 0, "max generations (0 for all)")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	history, err := client.FitnessHistory(ctx, ipdevo.RecordsRequest{RunID: *rf.runID, Latest: *rf.latest, Limit: *limit})
	if err != nil {
		return err
	}
	for i, best := range history.Best {
		fmt.Fprintf(out, "generation=%d best=%d\n", history.FirstGeneration+i, best)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	rf := addRunFlags(fs)
	limit := fs.Int("limit", 0, "max generations (0 for all)")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	diagnostics, err := client.Diagnostics(ctx, ipdevo.RecordsRequest{RunID: *rf.runID, Latest: *rf.latest, Limit: *limit})
	if err != nil {
		return err
	}
	for _, d := range diagnostics {
		fmt.Fprintf(out, "generation=%d elite=%s best=%d mean=%.2f min=%d range=%.3f\n",
			d.Generation, d.EliteName, d.BestScore, d.MeanScore, d.MinScore, d.MutationRange)
	}
	return nil
}

func runExport(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	rf := addRunFlags(fs)
	outDir := fs.String("out", exportsDir, "export output directory")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	exported, err := client.Export(ctx, ipdevo.ExportRequest{RunID: *rf.runID, Latest: *rf.latest, OutDir: *outDir})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "exported run_id=%s dir=%s\n", exported.RunID, exported.Directory)
	return nil
}

func historyDigits(history []bool) string {
	var b strings.Builder
	for _, cooperate := range history {
		if cooperate {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

func splitNames(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func usageError(msg string) error {
	return errors.New(msg + "\nusage: ipdctl [-v N] [-logtostderr] [-profile cpu|mem] <init|train|evaluate|table|weights|match|runs|lineage|fitness|diagnostics|export|references> [flags]" +
		"\nthe default memory store lasts one invocation; pass -store sqlite|leveldb to train and inspect runs across invocations")
}
