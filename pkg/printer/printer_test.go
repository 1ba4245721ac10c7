package printer

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	bugsv1 "github.com/openshift/newbugs/pkg/apis/bugs/v1"
)

func sampleBugs() []bugsv1.Bug {
	return []bugsv1.Bug{
		{
			"id":      json.Number("1001"),
			"status":  "NEW",
			"summary": "Crash when   opening\nsettings",
			"link":    "https://example.org/show_bug.cgi?id=1001",
		},
		{
			"id":      json.Number("1002"),
			"status":  "NEW",
			"summary": strings.Repeat("x", 80),
			"keywords": []interface{}{
				"regression",
			},
			"link": "https://example.org/show_bug.cgi?id=1002",
		},
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	count, err := Print(&buf, FormatTable, slices.Values(sampleBugs()))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"ID", "STATUS", "SUMMARY", "LINK"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1001", "NEW", "Crash", "when", "opening", "settings", "https://example.org/show_bug.cgi?id=1001"}, strings.Fields(lines[1]))

	row := strings.Fields(lines[2])
	require.Len(t, row, 4)
	assert.Equal(t, strings.Repeat("x", maxSummary-3)+"...", row[2])

	// columns are aligned
	assert.Equal(t, strings.Index(lines[0], "LINK"), strings.Index(lines[1], "https://"))
}

func TestPrintTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	count, err := Print(&buf, FormatTable, slices.Values([]bugsv1.Bug{}))
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, []string{"ID", "STATUS", "SUMMARY", "LINK"}, strings.Fields(buf.String()))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	count, err := Print(&buf, FormatJSON, slices.Values(sampleBugs()))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"id": 1001, "status": "NEW", "summary": "Crash when   opening\nsettings", "link": "https://example.org/show_bug.cgi?id=1001"}`, lines[0])
	assert.Contains(t, lines[1], `"keywords":["regression"]`)
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	count, err := Print(&buf, FormatYAML, slices.Values(sampleBugs()))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	dec := yaml.NewDecoder(&buf)
	var docs []map[string]interface{}
	for {
		var doc map[string]interface{}
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		docs = append(docs, doc)
	}
	require.Len(t, docs, 2)
	assert.Equal(t, 1001, docs[0]["id"])
	assert.Equal(t, "https://example.org/show_bug.cgi?id=1001", docs[0]["link"])
	assert.Equal(t, []interface{}{"regression"}, docs[1]["keywords"])
}

func TestPrintStreamsRecords(t *testing.T) {
	var buf bytes.Buffer
	pulled := 0
	seq := func(yield func(bugsv1.Bug) bool) {
		for _, bug := range sampleBugs() {
			pulled++
			// the previous record is already written when the next one is produced
			assert.Equal(t, pulled-1, strings.Count(buf.String(), "\n"))
			if !yield(bug) {
				return
			}
		}
	}
	count, err := Print(&buf, FormatJSON, seq)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPrintInvalidFormat(t *testing.T) {
	consumed := false
	seq := func(yield func(bugsv1.Bug) bool) {
		consumed = true
	}
	_, err := Print(io.Discard, "xml", seq)
	assert.Error(t, err)
	assert.False(t, consumed)
	assert.False(t, IsValidFormat("xml"))
	assert.True(t, IsValidFormat(FormatYAML))
}
