package clusterx

import (
	"bytes"
	"strings"

	"github.com/bits-and-blooms/bitset"
	errorutil "github.com/projectdiscovery/utils/errors"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

// unknownSymbol marks bytes that are not part of the alphabet
const unknownSymbol = -1

// Alphabet is a one-hot symbol encoder. Every recognized symbol sets exactly
// one bit of a chunk that is Width() bits wide, so two different recognized
// symbols always differ in exactly 2 bits. Unrecognized symbols encode as an
// all-zero chunk and decode as the fallback symbol.
type Alphabet struct {
	symbols       []byte
	index         [256]int
	fallback      byte
	caseSensitive bool
	aliases       map[string]string
}

// NewAlphabet builds an alphabet from config
func NewAlphabet(cfg *Config) (*Alphabet, error) {
	if cfg == nil || cfg.Symbols == "" {
		return nil, errorutil.NewWithTag("alphabet", "no symbols provided")
	}
	symbols := []byte(cfg.Symbols)
	if !cfg.CaseSensitive {
		symbols = bytes.ToUpper(symbols)
	}
	if dedupe := sliceutil.Dedupe(symbols); len(dedupe) != len(symbols) {
		return nil, errorutil.NewWithTag("alphabet", "duplicate symbols in `%v`", cfg.Symbols)
	}
	fallback := byte('N')
	if cfg.Fallback != "" {
		if len(cfg.Fallback) != 1 {
			return nil, errorutil.NewWithTag("alphabet", "fallback must be a single symbol got `%v`", cfg.Fallback)
		}
		fallback = cfg.Fallback[0]
	}
	if bytes.IndexByte(symbols, fallback) >= 0 {
		return nil, errorutil.NewWithTag("alphabet", "fallback `%c` is a recognized symbol", fallback)
	}

	a := &Alphabet{
		symbols:       symbols,
		fallback:      fallback,
		caseSensitive: cfg.CaseSensitive,
		aliases:       map[string]string{},
	}
	for i := range a.index {
		a.index[i] = unknownSymbol
	}
	for i, s := range symbols {
		a.set(s, i)
	}
	for alias, target := range cfg.Aliases {
		if len(alias) != 1 || len(target) != 1 {
			return nil, errorutil.NewWithTag("alphabet", "alias `%v: %v` must map one symbol to one symbol", alias, target)
		}
		from, to := alias[0], target[0]
		if !a.caseSensitive {
			from, to = upper(from), upper(to)
		}
		if a.index[from] != unknownSymbol {
			return nil, errorutil.NewWithTag("alphabet", "alias `%c` shadows a recognized symbol", from)
		}
		idx := a.index[to]
		if idx == unknownSymbol {
			return nil, errorutil.NewWithTag("alphabet", "alias `%c` points to unknown symbol `%c`", from, to)
		}
		a.set(from, idx)
		a.aliases[string(from)] = string(to)
	}
	return a, nil
}

func (a *Alphabet) set(s byte, idx int) {
	a.index[s] = idx
	if !a.caseSensitive {
		a.index[lower(s)] = idx
	}
}

// Width returns the number of bits used per symbol
func (a *Alphabet) Width() int {
	return len(a.symbols)
}

// Symbols returns the recognized symbols in bit order
func (a *Alphabet) Symbols() string {
	return string(a.symbols)
}

// Fallback returns the symbol printed for chunks that encode no recognized symbol
func (a *Alphabet) Fallback() byte {
	return a.fallback
}

// Config returns the config this alphabet was built from
func (a *Alphabet) Config() *Config {
	aliases := make(map[string]string, len(a.aliases))
	for k, v := range a.aliases {
		aliases[k] = v
	}
	return &Config{
		Symbols:       string(a.symbols),
		Aliases:       aliases,
		Fallback:      string(a.fallback),
		CaseSensitive: a.caseSensitive,
	}
}

// Recognized reports whether s is part of the alphabet (aliases included)
func (a *Alphabet) Recognized(s byte) bool {
	return a.index[s] != unknownSymbol
}

// Encode concatenates the one-hot encoding of every symbol of seq.
// When strict is set an unrecognized symbol returns a *SymbolError,
// otherwise it is encoded as an all-zero chunk.
func (a *Alphabet) Encode(seq []byte, strict bool) (*Vector, error) {
	width := len(a.symbols)
	v := &Vector{
		bits:   bitset.New(uint(width * len(seq))),
		length: len(seq),
	}
	for pos, s := range seq {
		idx := a.index[s]
		if idx == unknownSymbol {
			if strict {
				return nil, &SymbolError{Symbol: s, Position: pos}
			}
			v.unknown++
			continue
		}
		v.bits.Set(uint(pos*width + idx))
	}
	return v, nil
}

// Decode maps an encoded vector back to symbols. Chunks without exactly
// one set bit decode as the fallback symbol.
func (a *Alphabet) Decode(v *Vector) []byte {
	width := uint(len(a.symbols))
	out := make([]byte, v.length)
	for i := range out {
		out[i] = a.fallback
	}
	// one-hot chunks mean set bits are visited in position order
	found := make([]int, v.length)
	for bit, ok := v.bits.NextSet(0); ok; bit, ok = v.bits.NextSet(bit + 1) {
		pos := bit / width
		if pos >= uint(v.length) {
			break
		}
		found[pos]++
		out[pos] = a.symbols[bit%width]
	}
	for pos, n := range found {
		if n > 1 {
			out[pos] = a.fallback
		}
	}
	return out
}

// DecodeString is Decode returning a string
func (a *Alphabet) DecodeString(v *Vector) string {
	return string(a.Decode(v))
}

// String returns the recognized symbols and fallback
func (a *Alphabet) String() string {
	var sb strings.Builder
	sb.Write(a.symbols)
	sb.WriteString(" (fallback ")
	sb.WriteByte(a.fallback)
	sb.WriteString(")")
	return sb.String()
}

func upper(s byte) byte {
	if s >= 'a' && s <= 'z' {
		return s - 'a' + 'A'
	}
	return s
}

func lower(s byte) byte {
	if s >= 'A' && s <= 'Z' {
		return s - 'A' + 'a'
	}
	return s
}
