package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/projectdiscovery/gologger/writer"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	lines []string
}

func (w *captureWriter) Write(data []byte, level levels.Level) {
	w.lines = append(w.lines, string(data))
}

func (w *captureWriter) contains(s string) bool {
	for _, line := range w.lines {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.Nil(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExecuteCluster(t *testing.T) {
	dir := t.TempDir()
	opts := &Options{
		Mode:           ModeCluster,
		Input:          writeFile(t, dir, "in.fna", ">s1\nATGC\n>s2\nATGG\n>s3\nAAAA\n>s4\nATGC\n"),
		MaxDivergence:  1,
		Output:         filepath.Join(dir, "out.tsv"),
		Summary:        filepath.Join(dir, "summary.yaml"),
		AlphabetConfig: writeFile(t, dir, "alphabet.yaml", "symbols: ACGT-\naliases:\n  U: T\n"),
	}
	require.Nil(t, Execute(opts))

	out, err := os.ReadFile(opts.Output)
	require.Nil(t, err)
	require.Equal(t, "ATGC\tATGC\nATGG\tATGC\nAAAA\tAAAA\n", string(out))

	summary, err := os.ReadFile(opts.Summary)
	require.Nil(t, err)
	require.Contains(t, string(summary), "sequences: 4")
	require.Contains(t, string(summary), "representatives: 2")
}

func TestExecuteMakeDBQuery(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "ref.clxdb")
	summaryPath := filepath.Join(dir, "makedb.yaml")
	require.Nil(t, Execute(&Options{
		Mode:     ModeMakeDB,
		Input:    writeFile(t, dir, "ref.fna", ">r1\nATGC\n>r2\nATGG\n>r3\nAAAA\n>r4\nATGC\n"),
		Database: db,
		Summary:  summaryPath,
	}))
	summary, err := os.ReadFile(summaryPath)
	require.Nil(t, err)
	require.Contains(t, string(summary), "sequences: 4")
	require.Contains(t, string(summary), "duplicates: 1")
	require.Contains(t, string(summary), "representatives: 3")

	output := filepath.Join(dir, "hits.tsv")
	require.Nil(t, Execute(&Options{
		Mode:          ModeQuery,
		Input:         writeFile(t, dir, "q.fna", ">q1\nATGA\n>q2\nTTTT\n"),
		Database:      db,
		MaxDivergence: 1,
		Output:        output,
		Template:      unescape(`{{query_id}}\t{{subject_id}}\t{{divergence}}`),
	}))
	out, err := os.ReadFile(output)
	require.Nil(t, err)
	require.Equal(t, "q1\tr1\t1\nq1\tr2\t1\n", string(out))
}

func TestExecuteParseError(t *testing.T) {
	dir := t.TempDir()
	err := Execute(&Options{
		Mode:   ModeCluster,
		Input:  writeFile(t, dir, "bad.fna", "ATGC\n"),
		Output: filepath.Join(dir, "out.tsv"),
	})
	require.NotNil(t, err)
	require.True(t, strings.Contains(err.Error(), "line 1"), err.Error())
}

func TestConfigureLogging(t *testing.T) {
	capture := &captureWriter{}
	gologger.DefaultLogger.SetWriter(capture)
	defer func() {
		gologger.DefaultLogger.SetWriter(writer.NewCLI())
		gologger.DefaultLogger.SetMaxLevel(levels.LevelInfo)
	}()
	alphabetConfig := writeFile(t, t.TempDir(), "alphabet.yaml", "symbols: ACGT-\n")

	configureLogging(&Options{Silent: true})
	_, err := LoadAlphabet(alphabetConfig)
	require.Nil(t, err)
	require.False(t, capture.contains("Using alphabet"))

	configureLogging(&Options{Verbose: true})
	_, err = LoadAlphabet(alphabetConfig)
	require.Nil(t, err)
	require.True(t, capture.contains("Using alphabet"), capture.lines)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.fna", ">s1\nATGC\n")
	testcases := []struct {
		name string
		opts *Options
		ok   bool
	}{
		{name: "cluster", opts: &Options{Mode: ModeCluster, Input: input}, ok: true},
		{name: "stdin", opts: &Options{Mode: ModeCluster, Input: "-"}, ok: true},
		{name: "bad mode", opts: &Options{Mode: "fragment", Input: input}},
		{name: "no input", opts: &Options{Mode: ModeCluster}},
		{name: "missing input", opts: &Options{Mode: ModeCluster, Input: filepath.Join(dir, "nope.fna")}},
		{name: "negative divergence", opts: &Options{Mode: ModeCluster, Input: input, MaxDivergence: -1}},
		{name: "makedb without db", opts: &Options{Mode: ModeMakeDB, Input: input}},
		{name: "query missing db", opts: &Options{Mode: ModeQuery, Input: input, Database: filepath.Join(dir, "nope.clxdb")}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.validate()
			if tc.ok {
				require.Nil(t, err)
			} else {
				require.NotNil(t, err)
			}
		})
	}
}

func TestUnescape(t *testing.T) {
	require.Equal(t, "{{sequence}}\t{{representative}}", unescape(`{{sequence}}\t{{representative}}`))
	require.Equal(t, "", unescape(""))
}
