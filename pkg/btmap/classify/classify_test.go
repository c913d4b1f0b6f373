package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/btmap-go/pkg/btmap/config"
)

func TestClassify(t *testing.T) {
	c := Default()

	tests := []struct {
		name     string
		decision Decision
		eforms   []string
		sf       string
	}{
		{"eForm15,18 vs SF07", Accept, []string{"15", "18"}, "7"},
		{"eForm01 vs SF01", Accept, []string{"1"}, "1"},
		{"eForms 04, 05, 06 vs SF 12", Accept, []string{"4", "5", "6"}, "12"},
		{"eForm38,39,40 vs SF20 ", Accept, []string{"38", "39", "40"}, "20"},
		{"Legend", Ignore, nil, ""},
		{"Index of BTs", Ignore, nil, ""},
		{"Cross-reference", Ignore, nil, ""},
		{"eForm01 vs T01", Ignore, nil, ""},
		{"Random Sheet", Reject, nil, ""},
		{"eForm15 vs", Reject, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.name)
			assert.Equal(t, tt.decision, got.Decision)
			assert.Equal(t, tt.name, got.Sheet)
			if tt.decision == Accept {
				assert.Equal(t, tt.eforms, got.Binding.EformsNotices)
				assert.Equal(t, tt.sf, got.Binding.SFNotice)
			}
		})
	}
}

func TestClassifyRejectNamesSheet(t *testing.T) {
	got := Default().Classify("Random Sheet")
	require.Equal(t, Reject, got.Decision)
	assert.Contains(t, got.Reason, `"Random Sheet"`)
}

func TestClassifyCustomRules(t *testing.T) {
	c, err := New(config.SheetsConfig{
		IgnoreNames:   []string{"Notes"},
		AcceptPattern: `^E(\d+(?:,\d+)*)-S(\d+)$`,
	})
	require.NoError(t, err)

	assert.Equal(t, Ignore, c.Classify("Notes").Decision)
	assert.Equal(t, Reject, c.Classify("Legend").Decision)

	got := c.Classify("E003,10-S000")
	require.Equal(t, Accept, got.Decision)
	assert.Equal(t, []string{"3", "10"}, got.Binding.EformsNotices)
	assert.Equal(t, "0", got.Binding.SFNotice)
}

func TestNewRejectsBadAcceptPattern(t *testing.T) {
	_, err := New(config.SheetsConfig{AcceptPattern: `^eForm(\d+)$`})
	assert.Error(t, err)

	_, err = New(config.SheetsConfig{AcceptPattern: `(`})
	assert.Error(t, err)
}

func TestStripZeros(t *testing.T) {
	assert.Equal(t, "7", StripZeros("07"))
	assert.Equal(t, "10", StripZeros("010"))
	assert.Equal(t, "0", StripZeros("00"))
	assert.Equal(t, "", StripZeros(""))
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "ignore", Ignore.String())
	assert.Equal(t, "reject", Reject.String())
	assert.Equal(t, "accept", Accept.String())
}
