package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	bugsv1 "github.com/openshift/newbugs/pkg/apis/bugs/v1"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var formats = []string{FormatTable, FormatJSON, FormatYAML}

// summaries longer than this are cut in table output
const maxSummary = 60

func IsValidFormat(format string) bool {
	return slices.Contains(formats, format)
}

// Print writes bugs to w as they are pulled from the sequence and returns how many were written.
func Print(w io.Writer, format string, bugs iter.Seq[bugsv1.Bug]) (int, error) {
	switch format {
	case FormatTable:
		return printTable(w, bugs)
	case FormatJSON:
		return printJSON(w, bugs)
	case FormatYAML:
		return printYAML(w, bugs)
	default:
		return 0, errors.Errorf("invalid output format: %s", format)
	}
}

func printTable(w io.Writer, bugs iter.Seq[bugsv1.Bug]) (int, error) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSUMMARY\tLINK")
	count := 0
	for bug := range bugs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", bug.String(bugsv1.IDField), bug.String("status"), truncate(bug.String("summary")), bug.Link())
		count++
	}
	return count, tw.Flush()
}

// printJSON writes one object per line so output can be streamed into jq.
func printJSON(w io.Writer, bugs iter.Seq[bugsv1.Bug]) (int, error) {
	enc := json.NewEncoder(w)
	count := 0
	for bug := range bugs {
		if err := enc.Encode(bug); err != nil {
			return count, errors.Wrapf(err, "could not encode bug %s", bug.String(bugsv1.IDField))
		}
		count++
	}
	return count, nil
}

func printYAML(w io.Writer, bugs iter.Seq[bugsv1.Bug]) (int, error) {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	count := 0
	for bug := range bugs {
		if err := enc.Encode(map[string]interface{}(bug)); err != nil {
			return count, errors.Wrapf(err, "could not encode bug %s", bug.String(bugsv1.IDField))
		}
		count++
	}
	return count, enc.Close()
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= maxSummary {
		return s
	}
	return string(r[:maxSummary-3]) + "..."
}
