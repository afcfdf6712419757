package runner

import (
	"io"
	"os"

	"github.com/projectdiscovery/clusterx"
	"github.com/projectdiscovery/clusterx/internal/seqio"
	"github.com/projectdiscovery/gologger"
	errorutil "github.com/projectdiscovery/utils/errors"
)

// Execute runs the mode selected in options
func Execute(opts *Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	reader, err := seqio.Open(opts.Input)
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("failed to open input %v", opts.Input)
	}
	defer reader.Close()

	var summary *clusterx.Summary
	switch opts.Mode {
	case ModeMakeDB:
		summary, err = makeDatabase(opts, reader)
	case ModeQuery:
		summary, err = queryDatabase(opts, reader)
	default:
		summary, err = cluster(opts, reader)
	}
	if err != nil {
		return err
	}
	if opts.Summary != "" {
		if err := summary.Save(opts.Summary); err != nil {
			gologger.Error().Msgf("failed to save summary to %v got %v", opts.Summary, err)
		}
	}
	return nil
}

func cluster(opts *Options, src clusterx.Source) (*clusterx.Summary, error) {
	alphabet, err := LoadAlphabet(opts.AlphabetConfig)
	if err != nil {
		return nil, err
	}
	c, err := clusterx.New(&clusterx.Options{
		MaxDivergence: opts.MaxDivergence,
		Alphabet:      alphabet,
		Strict:        opts.Strict,
		DiskDedupe:    opts.DiskDedupe,
		InputSize:     opts.InputSize,
		Template:      opts.Template,
	})
	if err != nil {
		return nil, err
	}
	output, err := getOutputWriter(opts.Output)
	if err != nil {
		return nil, err
	}
	defer closeOutput(output, opts.Output)
	return c.ExecuteWithWriter(src, output)
}

func makeDatabase(opts *Options, src clusterx.Source) (*clusterx.Summary, error) {
	alphabet, err := LoadAlphabet(opts.AlphabetConfig)
	if err != nil {
		return nil, err
	}
	db, summary, err := clusterx.BuildDatabase(alphabet, src, opts.Strict)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(opts.Database, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("failed to create database %v", opts.Database)
	}
	if err := db.Save(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	gologger.Info().Msgf("Wrote %d sequences of length %d to %v (%d duplicates skipped)", len(db.Entries), db.Length, opts.Database, summary.Duplicates)
	return summary, nil
}

func queryDatabase(opts *Options, src clusterx.Source) (*clusterx.Summary, error) {
	if opts.AlphabetConfig != "" {
		gologger.Warning().Msgf("ignoring %v, query uses the alphabet stored in the database", opts.AlphabetConfig)
	}
	f, err := os.Open(opts.Database)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	db, err := clusterx.LoadDatabase(f)
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("failed to read database %v", opts.Database)
	}
	output, err := getOutputWriter(opts.Output)
	if err != nil {
		return nil, err
	}
	defer closeOutput(output, opts.Output)
	return db.QueryWithWriter(src, opts.MaxDivergence, opts.Strict, opts.Template, output)
}

// getOutputWriter returns the appropriate output writer
func getOutputWriter(outputPath string) (io.Writer, error) {
	if outputPath != "" {
		fs, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, errorutil.NewWithErr(err).Msgf("failed to open output file %v", outputPath)
		}
		return fs, nil
	}
	return os.Stdout, nil
}

// closeOutput closes the output writer if it's a file
func closeOutput(output io.Writer, outputPath string) {
	if outputPath != "" {
		if closer, ok := output.(io.Closer); ok {
			closer.Close()
		}
	}
}
