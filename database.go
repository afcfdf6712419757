package clusterx

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/projectdiscovery/gologger"
	errorutil "github.com/projectdiscovery/utils/errors"
)

const (
	databaseMagic   = 0x434c5844 // "CLXD"
	databaseVersion = 1
	// maxStringLen bounds ids and alphabet strings read from a database
	maxStringLen = 1 << 20
)

// Entry is one subject sequence of a database
type Entry struct {
	ID     string
	Vector *Vector
}

// Database is an ordered set of encoded subject sequences
// that query sequences are searched against
type Database struct {
	Alphabet *Alphabet
	// Length is the symbol length shared by all entries
	Length  int
	Entries []*Entry
}

// Hit is a database entry within the divergence limit of a query
type Hit struct {
	Query   *Sequence
	Subject *Entry
	// Divergence is the number of mismatched symbol positions
	Divergence int
}

// BuildDatabase encodes all sequences of src. Exact duplicates of an
// earlier sequence are skipped and the first id is kept. The summary counts
// records read, duplicates skipped and entries kept.
func BuildDatabase(alphabet *Alphabet, src Source, strict bool) (*Database, *Summary, error) {
	if alphabet == nil {
		alphabet = DefaultAlphabet
	}
	start := time.Now()
	db := &Database{Alphabet: alphabet, Length: -1}
	summary := &Summary{}
	seen := map[string]struct{}{}
	for {
		record, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		summary.Sequences++
		v, err := alphabet.Encode(record.Seq, strict)
		if err != nil {
			var symErr *SymbolError
			if errors.As(err, &symErr) {
				symErr.ID = record.ID
			}
			return nil, nil, err
		}
		if db.Length < 0 {
			db.Length = v.Len()
		} else if v.Len() != db.Length {
			return nil, nil, &LengthError{ID: record.ID, Want: db.Length, Got: v.Len()}
		}
		key := v.Key()
		if _, ok := seen[key]; ok {
			summary.Duplicates++
			gologger.Debug().Msgf("skipping duplicate database sequence %v", record.ID)
			continue
		}
		seen[key] = struct{}{}
		db.Entries = append(db.Entries, &Entry{ID: record.ID, Vector: v})
	}
	if db.Length < 0 {
		db.Length = 0
	}
	summary.Representatives = len(db.Entries)
	summary.finish(start)
	return db, summary, nil
}

// Save writes the database as a zstd compressed binary stream.
// Format:
// Magic (4 bytes)
// Version (4 bytes)
// Symbols, Fallback (string)
// CaseSensitive (1 byte)
// NumAliases (uvarint), then alias/target strings
// Length (uvarint)
// NumEntries (uvarint)
// Entries...
//
//	ID (string)
//	NumBits (uvarint)
//	Bits (uvarint each, delta encoded)
//
// Strings are a uvarint length followed by the bytes.
func (d *Database) Save(w io.Writer) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	pw := &payloadWriter{w: bufio.NewWriter(enc)}

	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], databaseMagic)
	binary.LittleEndian.PutUint32(header[4:8], databaseVersion)
	pw.write(header)

	cfg := d.Alphabet.Config()
	pw.writeString(cfg.Symbols)
	pw.writeString(cfg.Fallback)
	if cfg.CaseSensitive {
		pw.write([]byte{1})
	} else {
		pw.write([]byte{0})
	}
	aliases := make([]string, 0, len(cfg.Aliases))
	for k := range cfg.Aliases {
		aliases = append(aliases, k)
	}
	sort.Strings(aliases)
	pw.writeUvarint(uint64(len(aliases)))
	for _, k := range aliases {
		pw.writeString(k)
		pw.writeString(cfg.Aliases[k])
	}

	pw.writeUvarint(uint64(d.Length))
	pw.writeUvarint(uint64(len(d.Entries)))
	for _, e := range d.Entries {
		pw.writeString(e.ID)
		positions := e.Vector.setBits()
		pw.writeUvarint(uint64(len(positions)))
		var prev uint
		for _, p := range positions {
			pw.writeUvarint(uint64(p - prev))
			prev = p
		}
	}
	if pw.err == nil {
		pw.err = pw.w.Flush()
	}
	if pw.err != nil {
		_ = enc.Close()
		return pw.err
	}
	return enc.Close()
}

// LoadDatabase reads a database written by Save
func LoadDatabase(r io.Reader) (*Database, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	pr := &payloadReader{r: bufio.NewReader(dec)}

	header := pr.read(8)
	if pr.err != nil {
		return nil, errorutil.NewWithErr(pr.err).Msgf("failed to read database header")
	}
	if magic := binary.LittleEndian.Uint32(header[0:4]); magic != databaseMagic {
		return nil, errorutil.NewWithTag("database", "not a clusterx database (magic %x)", magic)
	}
	if version := binary.LittleEndian.Uint32(header[4:8]); version != databaseVersion {
		return nil, errorutil.NewWithTag("database", "unsupported database version %d", version)
	}

	cfg := &Config{Aliases: map[string]string{}}
	cfg.Symbols = pr.readString()
	cfg.Fallback = pr.readString()
	cfg.CaseSensitive = pr.read(1)[0] == 1
	numAliases := pr.readUvarint()
	for i := uint64(0); i < numAliases && pr.err == nil; i++ {
		k := pr.readString()
		cfg.Aliases[k] = pr.readString()
	}
	length := pr.readUvarint()
	numEntries := pr.readUvarint()
	if pr.err != nil {
		return nil, errorutil.NewWithErr(pr.err).Msgf("failed to read database header")
	}
	alphabet, err := NewAlphabet(cfg)
	if err != nil {
		return nil, err
	}
	if length > maxStringLen {
		return nil, errorutil.NewWithTag("database", "invalid sequence length %d", length)
	}

	db := &Database{Alphabet: alphabet, Length: int(length)}
	for i := uint64(0); i < numEntries; i++ {
		id := pr.readString()
		numBits := pr.readUvarint()
		if pr.err != nil {
			break
		}
		if numBits > length {
			return nil, errorutil.NewWithTag("database", "entry %v has %d set bits for %d symbols", id, numBits, length)
		}
		positions := make([]uint, 0, numBits)
		var prev uint64
		for j := uint64(0); j < numBits; j++ {
			prev += pr.readUvarint()
			positions = append(positions, uint(prev))
		}
		if pr.err != nil {
			break
		}
		v, ok := vectorFromBits(int(length), alphabet.Width(), positions)
		if !ok {
			return nil, errorutil.NewWithTag("database", "entry %v does not fit %d symbols", id, length)
		}
		db.Entries = append(db.Entries, &Entry{ID: id, Vector: v})
	}
	if pr.err != nil {
		return nil, errorutil.NewWithErr(pr.err).Msgf("failed to read database entries")
	}
	return db, nil
}

// Query searches every sequence of src against the database and calls
// callback for each entry tied at the minimum distance when that distance
// is within maxDiv mismatched symbols. Hits are reported in database order.
func (d *Database) Query(src Source, maxDiv int, strict bool, callback func(*Hit) error) (*Summary, error) {
	if maxDiv < 0 {
		return nil, errorutil.NewWithTag("clusterx", "max divergence cannot be negative got %v", maxDiv)
	}
	start := time.Now()
	vectors := make([]*Vector, len(d.Entries))
	for i, e := range d.Entries {
		vectors[i] = e.Vector
	}
	distances := make([]uint, len(vectors))
	summary := &Summary{Representatives: len(d.Entries)}

	gologger.Info().Msgf("Querying against %d database sequences ..", len(d.Entries))
	for {
		record, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		summary.Sequences++
		query, err := d.Alphabet.Encode(record.Seq, strict)
		if err != nil {
			var symErr *SymbolError
			if errors.As(err, &symErr) {
				symErr.ID = record.ID
			}
			return nil, err
		}
		if len(d.Entries) > 0 && query.Len() != d.Length {
			return nil, &LengthError{ID: record.ID, Want: d.Length, Got: query.Len()}
		}
		if err := Distances(vectors, query, distances); err != nil {
			return nil, err
		}
		best, ok := Nearest(distances, uint(maxDiv))
		if !ok {
			continue
		}
		for i := best; i < len(distances); i++ {
			if distances[i] != distances[best] {
				continue
			}
			summary.Hits++
			hit := &Hit{Query: record, Subject: d.Entries[i], Divergence: int(distances[i] / 2)}
			if err := callback(hit); err != nil {
				return nil, err
			}
		}
	}
	summary.finish(start)
	gologger.Info().Msgf("Query complete, took %d seconds. Found %d hits for %d sequences.",
		int(summary.Elapsed.Seconds()), summary.Hits, summary.Sequences)
	return summary, nil
}

// QueryWithWriter runs Query and writes one line per hit rendered with template
// (DefaultHitTemplate if empty)
func (d *Database) QueryWithWriter(src Source, maxDiv int, strict bool, template string, writer io.Writer) (*Summary, error) {
	if writer == nil {
		return nil, errorutil.NewWithTag("clusterx", "writer destination cannot be nil")
	}
	if template == "" {
		template = DefaultHitTemplate
	}
	formatter, err := NewFormatter(template, HitVars)
	if err != nil {
		return nil, err
	}
	return d.Query(src, maxDiv, strict, func(h *Hit) error {
		line := formatter.Format(map[string]interface{}{
			"query_id":   h.Query.ID,
			"query":      string(h.Query.Seq),
			"subject_id": h.Subject.ID,
			"subject":    d.Alphabet.DecodeString(h.Subject.Vector),
			"divergence": strconv.Itoa(h.Divergence),
		})
		_, err := writer.Write(unsafeToBytes(line))
		return err
	})
}

type payloadWriter struct {
	w   *bufio.Writer
	err error
}

func (p *payloadWriter) write(b []byte) {
	if p.err != nil {
		return
	}
	_, p.err = p.w.Write(b)
}

func (p *payloadWriter) writeUvarint(v uint64) {
	p.write(binary.AppendUvarint(nil, v))
}

func (p *payloadWriter) writeString(s string) {
	p.writeUvarint(uint64(len(s)))
	p.write([]byte(s))
}

type payloadReader struct {
	r   *bufio.Reader
	err error
}

func (p *payloadReader) read(n int) []byte {
	buf := make([]byte, n)
	if p.err != nil {
		return buf
	}
	_, p.err = io.ReadFull(p.r, buf)
	return buf
}

func (p *payloadReader) readUvarint() uint64 {
	if p.err != nil {
		return 0
	}
	var v uint64
	v, p.err = binary.ReadUvarint(p.r)
	return v
}

func (p *payloadReader) readString() string {
	n := p.readUvarint()
	if p.err != nil {
		return ""
	}
	if n > maxStringLen {
		p.err = errorutil.New("string of %d bytes exceeds limit", n)
		return ""
	}
	return string(p.read(int(n)))
}
