package clusterx

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes an alphabet
type Config struct {
	// Symbols are the recognized symbols, one bit each, in bit order
	Symbols string `yaml:"symbols"`
	// Aliases map extra input symbols onto recognized ones (ex: U: T)
	Aliases map[string]string `yaml:"aliases,omitempty"`
	// Fallback is printed for unrecognized symbols (default N)
	Fallback string `yaml:"fallback,omitempty"`
	// CaseSensitive disables folding lowercase input to uppercase.
	// Folded input decodes upper case, so atgc is printed as ATGC.
	CaseSensitive bool `yaml:"case-sensitive,omitempty"`
}

// DefaultConfig is the nucleotide alphabet of aligned input, gap included.
// It folds case and maps U to T, so representatives are printed in upper
// case DNA whatever the case of the input.
var DefaultConfig = Config{
	Symbols:  "ACGT-",
	Aliases:  map[string]string{"U": "T"},
	Fallback: "N",
}

// DefaultAlphabet is built from DefaultConfig
var DefaultAlphabet = mustAlphabet(&DefaultConfig)

func mustAlphabet(cfg *Config) *Alphabet {
	a, err := NewAlphabet(cfg)
	if err != nil {
		panic(err)
	}
	return a
}

// NewConfig reads config from file
func NewConfig(filePath string) (*Config, error) {
	bin, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err = yaml.Unmarshal(bin, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GenerateSample creates a sample yaml file with default values
func GenerateSample(filePath string) error {
	bin, err := yaml.Marshal(DefaultConfig)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, bin, 0644)
}
