package clusterx

import (
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Summary describes a finished run
type Summary struct {
	// Sequences read from the source, duplicates included
	Sequences int `yaml:"sequences"`
	// Duplicates skipped by the seen set
	Duplicates int `yaml:"duplicates"`
	// Representatives is the number of clusters (or database entries)
	Representatives int `yaml:"representatives"`
	// Hits reported by a database query
	Hits int `yaml:"hits,omitempty"`
	// Elapsed wall time of the run
	Elapsed time.Duration `yaml:"-"`
	// ElapsedSeconds mirrors Elapsed for export
	ElapsedSeconds float64 `yaml:"elapsed-seconds"`
}

func (s *Summary) finish(start time.Time) {
	s.Elapsed = time.Since(start)
	s.ElapsedSeconds = s.Elapsed.Seconds()
}

// Marshal returns the summary as yaml
func (s *Summary) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Save writes the summary as yaml to filePath
func (s *Summary) Save(filePath string) error {
	bin, err := s.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, bin, 0644)
}
