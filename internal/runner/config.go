package runner

import (
	"os"
	"path/filepath"

	"github.com/projectdiscovery/clusterx"
	"github.com/projectdiscovery/gologger"
	fileutil "github.com/projectdiscovery/utils/file"
)

// defaultAlphabetConfig returns $HOME/.config/clusterx/alphabet.yaml
func defaultAlphabetConfig() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "clusterx", "alphabet.yaml")
}

// LoadAlphabet reads the alphabet from filePath, or from the default config
// location if filePath is empty and a file exists there. Otherwise it
// returns clusterx.DefaultAlphabet.
func LoadAlphabet(filePath string) (*clusterx.Alphabet, error) {
	if filePath == "" {
		filePath = defaultAlphabetConfig()
		if filePath == "" || !fileutil.FileExists(filePath) {
			return clusterx.DefaultAlphabet, nil
		}
	}
	cfg, err := clusterx.NewConfig(filePath)
	if err != nil {
		return nil, err
	}
	alphabet, err := clusterx.NewAlphabet(cfg)
	if err != nil {
		return nil, err
	}
	gologger.Verbose().Msgf("Using alphabet %v from %v", alphabet, filePath)
	return alphabet, nil
}
