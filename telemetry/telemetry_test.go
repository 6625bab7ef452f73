package telemetry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestTimingCollectorReport(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("rate propagation USD")
	refresh := root.Child("refresh reporting amounts")
	refresh.End()
	recompute := root.Child("recompute accounts")
	recompute.End()
	root.End()

	var buf strings.Builder
	collector.Report(&buf)
	report := buf.String()

	lines := strings.Split(strings.TrimRight(report, "\n"), "\n")
	assert.Equal(t, 3, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "rate propagation USD: "))
	assert.True(t, strings.HasPrefix(lines[1], "├─ refresh reporting amounts: "))
	assert.True(t, strings.HasPrefix(lines[2], "└─ recompute accounts: "))
}

func TestTimingCollectorNestedChildren(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("recalculate")
	outer := root.Child("accounts")
	inner := outer.Child("fold transactions")
	inner.End()
	outer.End()
	root.End()

	var buf strings.Builder
	collector.Report(&buf)
	report := buf.String()

	assert.True(t, strings.Contains(report, "└─ accounts: "))
	assert.True(t, strings.Contains(report, "   └─ fold transactions: "))
}

func TestTimingCollectorEmptyReport(t *testing.T) {
	collector := NewTimingCollector()

	var buf strings.Builder
	collector.Report(&buf)
	assert.Equal(t, "", buf.String())
}

func TestFromContextDefaultsToNoOp(t *testing.T) {
	ctx := context.Background()

	// Must be safe to use without a collector installed.
	timer := FromContext(ctx).Start("anything")
	child := timer.Child("nested")
	child.End()
	timer.End()

	var buf strings.Builder
	FromContext(ctx).Report(&buf)
	assert.Equal(t, "", buf.String())
}

func TestWithCollectorRoundTrip(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	got := FromContext(ctx)
	assert.Equal[Collector](t, collector, got)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"250ms", "250ms"},
		{"999ms", "999ms"},
		{"1s", "1.00s"},
		{"2500ms", "2.50s"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := time.ParseDuration(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, formatDuration(d))
		})
	}
}
