package clusterx

import (
	"fmt"
	"strings"

	"github.com/projectdiscovery/fasttemplate"
	errorutil "github.com/projectdiscovery/utils/errors"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

const (
	// ParenthesisOpen marker - begin of a placeholder
	ParenthesisOpen = "{{"
	// ParenthesisClose marker - end of a placeholder
	ParenthesisClose = "}}"
)

// DefaultTemplate prints the input sequence and its representative
const DefaultTemplate = "{{sequence}}\t{{representative}}"

// DefaultHitTemplate prints one database hit
const DefaultHitTemplate = "{{query_id}}\t{{query}}\t{{subject_id}}\t{{subject}}\t{{divergence}}"

// ClusterVars are the placeholders available to cluster output templates
var ClusterVars = []string{"sequence", "representative", "id", "index"}

// HitVars are the placeholders available to query output templates
var HitVars = []string{"query_id", "query", "subject_id", "subject", "divergence"}

// Replace replaces placeholders in template with values on the fly.
func Replace(template string, values map[string]interface{}) string {
	valuesMap := make(map[string]interface{}, len(values))
	for k, v := range values {
		valuesMap[k] = fmt.Sprint(v)
	}
	return fasttemplate.ExecuteStringStd(template, ParenthesisOpen, ParenthesisClose, valuesMap)
}

// Formatter renders one output line per record
type Formatter struct {
	template string
}

// NewFormatter validates template against the allowed placeholders
func NewFormatter(template string, allowed []string) (*Formatter, error) {
	if template == "" {
		return nil, errorutil.NewWithTag("clusterx", "output template cannot be empty")
	}
	// check if all placeholders are correctly used and are valid
	if _, err := fasttemplate.NewTemplate(template, ParenthesisOpen, ParenthesisClose); err != nil {
		return nil, err
	}
	var unknown []string
	for _, v := range getAllVars(template) {
		if !sliceutil.Contains(allowed, v) {
			unknown = append(unknown, v)
		}
	}
	if len(unknown) > 0 {
		return nil, errorutil.NewWithTag("clusterx", "unknown template variables `%v` (available: %v)", strings.Join(unknown, ","), strings.Join(allowed, ","))
	}
	return &Formatter{template: template}, nil
}

// Format returns the rendered line terminated by a line break
func (f *Formatter) Format(values map[string]interface{}) string {
	return Replace(f.template, values) + "\n"
}
