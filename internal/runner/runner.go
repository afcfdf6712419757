package runner

import (
	"os"
	"strings"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"
	errorutil "github.com/projectdiscovery/utils/errors"
	fileutil "github.com/projectdiscovery/utils/file"
)

const (
	ModeCluster = "cluster"
	ModeMakeDB  = "makedb"
	ModeQuery   = "query"
)

type Options struct {
	Mode           string
	Input          string // input sequences, "-" for stdin
	Database       string // database written by makedb and read by query
	MaxDivergence  int
	Strict         bool
	DiskDedupe     bool
	AlphabetConfig string
	Output         string
	Template       string
	Summary        string
	Config         string
	Verbose        bool
	Silent         bool
	// InputSize in bytes, 0 for stdin
	InputSize int64
}

func ParseFlags() *Options {
	opts := &Options{}
	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`Greedy clustering of short pre-aligned sequences, preferring sequences towards front of file.`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&opts.Input, "input", "i", "", "aligned sequences to cluster or query with (FASTA/FASTQ, optionally gzipped, stdin)"),
		flagSet.StringVar(&opts.Database, "db", "", "database file written by makedb mode and searched by query mode"),
	)

	flagSet.CreateGroup("cluster", "Cluster",
		flagSet.StringVarP(&opts.Mode, "mode", "m", ModeCluster, "mode of operation (cluster, makedb, query)"),
		flagSet.IntVarP(&opts.MaxDivergence, "divergence", "d", 5, "maximum number of mismatches in reported hits"),
		flagSet.BoolVar(&opts.Strict, "strict", false, "fail on symbols outside the alphabet instead of encoding them as the fallback symbol"),
		flagSet.BoolVarP(&opts.DiskDedupe, "disk-dedupe", "dd", false, "keep the duplicate filter on disk instead of in memory"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&opts.Output, "output", "o", "", "output file to write results"),
		flagSet.StringVarP(&opts.Template, "template", "t", "", `output line template (default cluster '{{sequence}}\t{{representative}}')`),
		flagSet.StringVar(&opts.Summary, "summary", "", "write run summary as yaml to file"),
		flagSet.BoolVarP(&opts.Verbose, "verbose", "v", false, "print extra debug logging information"),
		flagSet.BoolVar(&opts.Silent, "silent", false, "unless there is an error, do not print logging information"),
		flagSet.CallbackVar(printVersion, "version", "display clusterx version"),
	)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&opts.Config, "config", "", `clusterx cli config file (default '$HOME/.config/clusterx/config.yaml')`),
		flagSet.StringVarP(&opts.AlphabetConfig, "alphabet-config", "ac", "", `alphabet config file (default '$HOME/.config/clusterx/alphabet.yaml')`),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("Could not read flags: %s\n", err)
	}

	if opts.Config != "" {
		if err := flagSet.MergeConfigFile(opts.Config); err != nil {
			gologger.Error().Msgf("failed to read config file got %v", err)
		}
	}

	configureLogging(opts)
	showBanner()

	opts.Template = unescape(opts.Template)
	if opts.Input == "" && fileutil.HasStdin() {
		opts.Input = "-"
	}
	if err := opts.validate(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}
	if opts.Input != "-" {
		if info, err := os.Stat(opts.Input); err == nil {
			opts.InputSize = info.Size()
		}
	}
	return opts
}

// configureLogging sets the gologger level from the silent and verbose flags
func configureLogging(opts *Options) {
	if opts.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	} else if opts.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
}

func (o *Options) validate() error {
	switch o.Mode {
	case ModeCluster, ModeMakeDB, ModeQuery:
	default:
		return errorutil.NewWithTag("clusterx", "invalid mode: %s (must be '%s', '%s' or '%s')", o.Mode, ModeCluster, ModeMakeDB, ModeQuery)
	}
	if o.Input == "" {
		return errorutil.NewWithTag("clusterx", "no input found")
	}
	if o.Input != "-" && !fileutil.FileExists(o.Input) {
		return errorutil.NewWithTag("clusterx", "input file %v does not exist", o.Input)
	}
	if o.MaxDivergence < 0 {
		return errorutil.NewWithTag("clusterx", "divergence cannot be negative")
	}
	if o.Mode != ModeCluster && o.Database == "" {
		return errorutil.NewWithTag("clusterx", "%s mode requires -db", o.Mode)
	}
	if o.Mode == ModeQuery && !fileutil.FileExists(o.Database) {
		return errorutil.NewWithTag("clusterx", "database %v does not exist", o.Database)
	}
	return nil
}

// unescape turns \t and \n typed on the command line into tab and newline
func unescape(template string) string {
	return strings.NewReplacer(`\t`, "\t", `\n`, "\n").Replace(template)
}

func printVersion() {
	gologger.Info().Msgf("Current version: %s", version)
	os.Exit(0)
}
