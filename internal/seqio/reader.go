package seqio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/projectdiscovery/clusterx"
	errorutil "github.com/projectdiscovery/utils/errors"
)

// maxLineSize is the longest line the reader accepts
const maxLineSize = 64 * 1024 * 1024

type format int

const (
	formatUnknown format = iota
	formatFasta
	formatFastq
)

// ParseError reports a malformed record
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse input sequence at line %d: %s", e.Line, e.Msg)
}

// Reader reads FASTA or FASTQ records (optionally gzip compressed) one at
// a time. The format is detected from the first record.
type Reader struct {
	scanner *bufio.Scanner
	closers []io.Closer
	format  format
	line    int
	peek    string
	peeked  bool
}

// NewReader returns a reader over r
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	reader := &Reader{}
	var src io.Reader = br
	// gzip magic
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, errorutil.NewWithErr(err).Msgf("failed to open gzip input")
		}
		reader.closers = append(reader.closers, gz)
		src = gz
	}
	reader.scanner = bufio.NewScanner(src)
	reader.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return reader, nil
}

// Open opens filePath for reading, "-" reads from stdin
func Open(filePath string) (*Reader, error) {
	if filePath == "-" {
		return NewReader(os.Stdin)
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	reader, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	reader.closers = append(reader.closers, f)
	return reader, nil
}

// Next returns the next record, io.EOF once the input is exhausted
// and a *ParseError for malformed input
func (r *Reader) Next() (*clusterx.Sequence, error) {
	line, err := r.nextNonBlank()
	if err != nil {
		return nil, err
	}
	if r.format == formatUnknown {
		switch {
		case strings.HasPrefix(line, ">"):
			r.format = formatFasta
		case strings.HasPrefix(line, "@"):
			r.format = formatFastq
		default:
			return nil, &ParseError{Line: r.line, Msg: "input is neither FASTA nor FASTQ"}
		}
	}
	if r.format == formatFasta {
		return r.nextFasta(line)
	}
	return r.nextFastq(line)
}

func (r *Reader) nextFasta(header string) (*clusterx.Sequence, error) {
	if !strings.HasPrefix(header, ">") {
		return nil, &ParseError{Line: r.line, Msg: "expected '>' at start of FASTA record"}
	}
	headerLine := r.line
	record := &clusterx.Sequence{ID: recordID(header[1:])}
	var seq bytes.Buffer
	for {
		line, ok, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if strings.HasPrefix(line, ">") {
			r.unread(line)
			break
		}
		seq.WriteString(strings.TrimSpace(line))
	}
	if seq.Len() == 0 {
		return nil, &ParseError{Line: headerLine, Msg: fmt.Sprintf("record %q has no sequence", record.ID)}
	}
	record.Seq = seq.Bytes()
	return record, nil
}

func (r *Reader) nextFastq(header string) (*clusterx.Sequence, error) {
	if !strings.HasPrefix(header, "@") {
		return nil, &ParseError{Line: r.line, Msg: "expected '@' at start of FASTQ record"}
	}
	record := &clusterx.Sequence{ID: recordID(header[1:])}
	seq, ok, err := r.readLine()
	if err != nil {
		return nil, err
	}
	if !ok || seq == "" {
		return nil, &ParseError{Line: r.line, Msg: fmt.Sprintf("record %q has no sequence", record.ID)}
	}
	plus, ok, err := r.readLine()
	if err != nil {
		return nil, err
	}
	if !ok || !strings.HasPrefix(plus, "+") {
		return nil, &ParseError{Line: r.line, Msg: fmt.Sprintf("record %q is missing the '+' separator", record.ID)}
	}
	qual, ok, err := r.readLine()
	if err != nil {
		return nil, err
	}
	if !ok || len(qual) != len(seq) {
		return nil, &ParseError{Line: r.line, Msg: fmt.Sprintf("record %q has %d quality scores for %d bases", record.ID, len(qual), len(seq))}
	}
	record.Seq = []byte(seq)
	return record, nil
}

func (r *Reader) nextNonBlank() (string, error) {
	for {
		line, ok, err := r.readLine()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", io.EOF
		}
		if strings.TrimSpace(line) != "" {
			return line, nil
		}
	}
}

func (r *Reader) readLine() (string, bool, error) {
	if r.peeked {
		r.peeked = false
		return r.peek, true, nil
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", false, errorutil.NewWithErr(err).Msgf("failed to read input")
		}
		return "", false, nil
	}
	r.line++
	return strings.TrimRight(r.scanner.Text(), "\r"), true, nil
}

func (r *Reader) unread(line string) {
	r.peek = line
	r.peeked = true
}

// Close closes the underlying file and decompressor
func (r *Reader) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// recordID returns the first word of a header
func recordID(header string) string {
	if fields := strings.Fields(header); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
