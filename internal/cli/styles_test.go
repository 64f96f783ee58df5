package cli

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░", ProgressBar(0, 10))
	assert.Equal(t, "█████░░░░░", ProgressBar(50, 10))
	assert.Equal(t, "██████████", ProgressBar(180, 10))
	assert.Equal(t, "░░░░", ProgressBar(-5, 4))
	assert.Empty(t, ProgressBar(50, 0))
}

func TestFormatHelpersKeepText(t *testing.T) {
	assert.Contains(t, FormatAmount(decimal.RequireFromString("1234.5")), "₹1,234.5")
	assert.Contains(t, FormatPercent(decimal.RequireFromString("12.4")), "+12%")
	assert.Contains(t, FormatPercent(decimal.RequireFromString("-7.6")), "-8%")
	assert.Contains(t, FormatPercent(decimal.Zero), "+0%")
	assert.Contains(t, FormatSuccess("saved"), "saved")
	assert.Contains(t, FormatTitle("Report"), "Report")
}
