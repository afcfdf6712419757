package clusterx

import "fmt"

// SymbolError is returned in strict mode for a symbol outside the alphabet
type SymbolError struct {
	ID       string // record id, empty when unknown
	Symbol   byte
	Position int // zero based
}

func (e *SymbolError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("unrecognized symbol %q at position %d of %v", e.Symbol, e.Position+1, e.ID)
	}
	return fmt.Sprintf("unrecognized symbol %q at position %d", e.Symbol, e.Position+1)
}

// LengthError is returned when sequences of one run are not of equal length
type LengthError struct {
	ID   string
	Want int
	Got  int
}

func (e *LengthError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("sequence %v has length %d, expected %d (input must be aligned)", e.ID, e.Got, e.Want)
	}
	return fmt.Sprintf("sequence has length %d, expected %d (input must be aligned)", e.Got, e.Want)
}
