package formatting

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git-sync-operator/internal/api"
	"git-sync-operator/internal/app"
	"git-sync-operator/internal/reconciler"
	"git-sync-operator/internal/rollout"
)

func TestPrettyJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{
			name:     "simple object",
			input:    map[string]interface{}{"name": "test", "value": 42},
			expected: "{\n  \"name\": \"test\",\n  \"value\": 42\n}",
		},
		{
			name:     "array",
			input:    []string{"a", "b", "c"},
			expected: "[\n  \"a\",\n  \"b\",\n  \"c\"\n]",
		},
		{
			name:     "string",
			input:    "hello world",
			expected: "\"hello world\"",
		},
		{
			name:     "number",
			input:    123,
			expected: "123",
		},
		{
			name:     "boolean",
			input:    true,
			expected: "true",
		},
		{
			name:     "nil",
			input:    nil,
			expected: "null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PrettyJSON(tt.input)
			if result != tt.expected {
				t.Errorf("PrettyJSON() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestPrettyJSONWithInvalidData(t *testing.T) {
	// Test with data that can't be marshaled (like a channel)
	ch := make(chan int)
	result := PrettyJSON(ch)
	
	// Should fallback to fmt.Sprintf format
	if result == "" {
		t.Error("PrettyJSON() should not return empty string for invalid data")
	}
	
	// Should contain some representation of the channel
	if len(result) < 5 {
		t.Error("PrettyJSON() fallback should provide meaningful output")
	}
} 
func TestParseFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": FormatTable, "table": FormatTable, "JSON": FormatJSON, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func testStatuses() []app.NamespaceStatus {
	return []app.NamespaceStatus{
		{
			Namespace: "payments",
			Records: []api.VersionRecord{
				{Name: "payments", Applied: "def5678", Deployed: "abc1234"},
				{Name: "worker", Deployed: "def5678"},
			},
		},
		{Namespace: "search"},
		{Namespace: "billing", Err: errors.New("list versions in billing: timeout")},
	}
}

func TestNewStatusReport(t *testing.T) {
	report := NewStatusReport(testStatuses())
	assert.Equal(t, []VersionRow{
		{Namespace: "payments", Name: "payments", Applied: "def5678", Deployed: "abc1234"},
		{Namespace: "payments", Name: "worker", Deployed: "def5678"},
		{Namespace: "search"},
		{Namespace: "billing", Error: "list versions in billing: timeout"},
	}, report.Records)
}

func TestWrite_StatusTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Options{Format: FormatTable}, NewStatusReport(testStatuses())))

	out := buf.String()
	assert.Contains(t, out, "NAMESPACE")
	assert.Contains(t, out, "def5678")
	assert.Contains(t, out, "timeout")
	assert.Equal(t, 1, strings.Count(out, "worker"))
}

func TestWrite_StatusYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Options{Format: FormatYAML}, NewStatusReport(testStatuses()[:1])))

	assert.Equal(t, `records:
- applied: def5678
  deployed: abc1234
  name: payments
  namespace: payments
- deployed: def5678
  name: worker
  namespace: payments
`, buf.String())
}

func TestWrite_PassJSON(t *testing.T) {
	pass := reconciler.PassResult{
		ID:         "pass-1",
		Revision:   "def5678",
		RefreshErr: errors.New("fetch: timeout"),
		Namespaces: []reconciler.NamespaceResult{
			{Namespace: "payments", Applied: "abc1234", Stale: true, Recorded: true, Rollout: rollout.Result{Annotated: []string{"payments"}}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Options{Format: FormatJSON}, NewPassReport(pass)))

	var decoded PassReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, NewPassReport(pass), decoded)
	assert.Equal(t, "fetch: timeout", decoded.RefreshError)
}

func TestPassReport_Table(t *testing.T) {
	report := NewPassReport(reconciler.PassResult{
		ID:       "pass-2",
		Revision: "def5678",
		Namespaces: []reconciler.NamespaceResult{
			{Namespace: "payments", Applied: "def5678", Rollout: rollout.Result{Deployed: []string{"payments", "worker"}}},
			{Namespace: "search", Stale: true, Err: errors.New("apply failed")},
		},
	})

	assert.Equal(t, "Pass pass-2 at def5678", report.Title())
	rows := report.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "current", rows[0][2])
	assert.Equal(t, 2, rows[0][5])
	assert.Equal(t, "no", rows[1][2])
	assert.Equal(t, "-", rows[1][1])

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Options{Format: FormatTable, Color: true}, report))
	assert.Contains(t, buf.String(), "Pass pass-2 at def5678")
}
