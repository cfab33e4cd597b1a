package rules

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	base := Rule{ID: "temp", Type: TypePath, Action: ActionDelete}

	tests := []struct {
		name    string
		mutate  func(r *Rule)
		wantErr bool
	}{
		{"valid", func(r *Rule) {}, false},
		{"empty id", func(r *Rule) { r.ID = " " }, true},
		{"unknown type", func(r *Rule) { r.Type = "shell" }, true},
		{"unknown action", func(r *Rule) { r.Action = "shred" }, true},
		{"negative size", func(r *Rule) { r.SizeThresholdMB = Int64(-1) }, true},
		{"negative age", func(r *Rule) { r.AgeThresholdDays = Int64(-3) }, true},
		{"zero thresholds", func(r *Rule) {
			r.SizeThresholdMB = Int64(0)
			r.AgeThresholdDays = Int64(0)
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRule)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestThresholdConversionsSaturate(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, Days(7))
	assert.Equal(t, time.Duration(0), Days(0))
	assert.Equal(t, time.Duration(math.MaxInt64), Days(200000))
	assert.Equal(t, time.Duration(math.MaxInt64), Days(math.MaxInt64))

	assert.Equal(t, int64(2*1024*1024), Megabytes(2))
	assert.Equal(t, int64(math.MaxInt64), Megabytes(9e12))
	assert.Equal(t, int64(math.MaxInt64), Megabytes(math.MaxInt64))
}

func TestWithPrivilege(t *testing.T) {
	rs := []Rule{
		{ID: "user", RequiresAdmin: false},
		{ID: "system", RequiresAdmin: true},
	}

	views := WithPrivilege(rs, false)
	require.Len(t, views, 2)
	assert.False(t, views[0].Blocked)
	assert.True(t, views[1].Blocked)
	assert.Equal(t, BlockedReason, views[1].BlockedReason)

	for _, v := range WithPrivilege(rs, true) {
		assert.False(t, v.Blocked, v.ID)
	}
}

func TestStatusCounted(t *testing.T) {
	counted := map[Status]bool{StatusOK: true, StatusPartial: true}
	all := []Status{
		StatusPending, StatusOK, StatusPartial, StatusBlocked, StatusMissing,
		StatusMissingPath, StatusUnsupported, StatusSkipped, StatusError, StatusUnknown,
	}
	for _, s := range all {
		assert.Equal(t, counted[s], s.Counted(), string(s))
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	in := []Rule{
		{
			ID:               "user-temp",
			Title:            "User temp",
			Category:         "system",
			Risk:             RiskLow,
			Type:             TypePattern,
			Path:             "%TEMP%",
			Pattern:          "*.log",
			AgeThresholdDays: Int64(7),
			Action:           ActionRecycle,
			Enabled:          true,
		},
		{
			ID:       "dism",
			Title:    "Component store",
			Category: "system",
			Risk:     RiskMedium,
			Type:     TypeSpecial,
			Action:   ActionToolCall,
			ToolCmd:  "dism /online /cleanup-image /startcomponentcleanup",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, in))
	assert.Contains(t, buf.String(), "version: 1")

	out, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeRejects(t *testing.T) {
	tests := map[string]string{
		"duplicate ids": `
rules:
  - {id: a, type: path, action: delete}
  - {id: a, type: path, action: delete}
`,
		"bad type": `
rules:
  - {id: a, type: folder, action: delete}
`,
		"unknown field": `
rules:
  - {id: a, type: path, action: delete, colour: red}
`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	rs, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestScanResultReports(t *testing.T) {
	res := ScanResult{Items: []RuleScan{
		{ID: "a", Category: "browser", TotalBytes: 10, FileCount: 2, Status: StatusOK, Drive: "C:"},
		{ID: "b", Category: "system", Status: StatusBlocked, Blocked: true},
	}}

	reps := res.Reports()
	require.Len(t, reps, 2)
	assert.Equal(t, "C:", reps[0].Drive)
	assert.Equal(t, int64(10), reps[0].TotalBytes)
	assert.Equal(t, StatusBlocked, reps[1].Status)
}
