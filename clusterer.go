package clusterx

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/projectdiscovery/gologger"
	errorutil "github.com/projectdiscovery/utils/errors"
)

// Clusterer Options
type Options struct {
	// MaxDivergence is the maximum number of mismatched symbol positions
	// between a sequence and the representative it is assigned to
	MaxDivergence int
	// Alphabet used to encode sequences, DefaultAlphabet if nil.
	// Representatives are decoded in the alphabet's canonical case, which
	// is upper case unless the alphabet is case sensitive.
	Alphabet *Alphabet
	// Strict when true aborts on unrecognized symbols instead
	// of encoding them with the fallback chunk
	Strict bool
	// DiskDedupe forces the on-disk seen set
	DiskDedupe bool
	// InputSize is the approximate input size in bytes, used to pick
	// the seen set backend (0 = unknown)
	InputSize int64
	// Template of one output line, DefaultTemplate if empty
	Template string
}

// Assignment is the outcome for one non duplicate input sequence
type Assignment struct {
	Sequence *Sequence
	// Index of the representative (creation order)
	Index int
	// Representative is the decoded representative sequence
	Representative []byte
	// Created is true if Sequence became a new representative
	Created bool
}

// Clusterer greedily clusters aligned sequences in input order
type Clusterer struct {
	Options   *Options
	alphabet  *Alphabet
	formatter *Formatter
}

// New creates and returns new clusterer instance from options
func New(opts *Options) (*Clusterer, error) {
	if opts == nil {
		return nil, errorutil.NewWithTag("clusterx", "options cannot be nil")
	}
	if opts.MaxDivergence < 0 {
		return nil, errorutil.NewWithTag("clusterx", "max divergence cannot be negative got %v", opts.MaxDivergence)
	}
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	formatter, err := NewFormatter(opts.Template, ClusterVars)
	if err != nil {
		return nil, err
	}
	alphabet := opts.Alphabet
	if alphabet == nil {
		alphabet = DefaultAlphabet
	}
	return &Clusterer{
		Options:   opts,
		alphabet:  alphabet,
		formatter: formatter,
	}, nil
}

// ExecuteWithCallback clusters all sequences of src in a single pass and
// calls callback for every sequence that is not an exact duplicate of an
// earlier one. Any error from src, the encoder or callback aborts the run.
func (c *Clusterer) ExecuteWithCallback(src Source, callback func(*Assignment) error) (*Summary, error) {
	if src == nil {
		return nil, errorutil.NewWithTag("clusterx", "sequence source cannot be nil")
	}
	start := time.Now()
	seen, err := NewSeenSet(c.Options.InputSize, c.Options.DiskDedupe)
	if err != nil {
		return nil, err
	}
	defer seen.Cleanup()

	reps := NewRepresentativeSet()
	maxDiv := uint(c.Options.MaxDivergence)
	summary := &Summary{}
	length := -1
	warned := false

	gologger.Info().Msgf("Clustering ..")
	for {
		record, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		summary.Sequences++

		query, err := c.encode(record)
		if err != nil {
			return nil, err
		}
		if length < 0 {
			length = query.Len()
		} else if query.Len() != length {
			return nil, &LengthError{ID: record.ID, Want: length, Got: query.Len()}
		}
		if query.Unknown() > 0 && !warned {
			warned = true
			gologger.Warning().Msgf("%v contains symbols outside %v, encoding them as %c", record.ID, c.alphabet, c.alphabet.Fallback())
		}

		// skip if sequence has already been seen
		inserted, err := seen.Insert(query)
		if err != nil {
			return nil, err
		}
		if !inserted {
			summary.Duplicates++
			continue
		}

		index, created, err := reps.Assign(query, maxDiv)
		if err != nil {
			return nil, err
		}
		gologger.Debug().Msgf("Assigned representative: %d", index)
		gologger.Debug().Msgf("Representatives: %d", reps.Len())

		assignment := &Assignment{
			Sequence:       record,
			Index:          index,
			Representative: c.alphabet.Decode(reps.At(index)),
			Created:        created,
		}
		if err := callback(assignment); err != nil {
			return nil, err
		}
	}
	summary.Representatives = reps.Len()
	summary.finish(start)

	gologger.Info().Msgf("Clustering complete, took %d seconds. Clustered %d sequences (%d distinct) into %d clusters.",
		int(summary.Elapsed.Seconds()), summary.Sequences, seen.Len(), summary.Representatives)
	return summary, nil
}

// ExecuteWithWriter executes Clusterer and writes one formatted line per
// assignment to writer
func (c *Clusterer) ExecuteWithWriter(src Source, writer io.Writer) (*Summary, error) {
	if writer == nil {
		return nil, errorutil.NewWithTag("clusterx", "writer destination cannot be nil")
	}
	return c.ExecuteWithCallback(src, func(a *Assignment) error {
		_, err := writer.Write(unsafeToBytes(c.FormatAssignment(a)))
		return err
	})
}

// FormatAssignment renders a as an output line
func (c *Clusterer) FormatAssignment(a *Assignment) string {
	return c.formatter.Format(map[string]interface{}{
		"sequence":       string(a.Sequence.Seq),
		"representative": string(a.Representative),
		"id":             a.Sequence.ID,
		"index":          strconv.Itoa(a.Index),
	})
}

func (c *Clusterer) encode(record *Sequence) (*Vector, error) {
	v, err := c.alphabet.Encode(record.Seq, c.Options.Strict)
	if err != nil {
		var symErr *SymbolError
		if errors.As(err, &symErr) {
			symErr.ID = record.ID
		}
		return nil, err
	}
	return v, nil
}
