package cli

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Contains(t, FormatAmount(decimal.RequireFromString("-84.1")), "-84.10")
	assert.Contains(t, FormatAmount(decimal.RequireFromString("1200")), "1200.00")
}

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), SuccessIcon+" saved")
	assert.Contains(t, FormatError("failed"), ErrorIcon+" failed")
	assert.Contains(t, FormatWarning("careful"), "careful")
	assert.Contains(t, FormatInfo("note"), "note")
	assert.Contains(t, FormatTitle("Categories"), "Categories")
	assert.Contains(t, FormatPrompt("Add note?"), "Add note? →")

	box := RenderBox("Transaction 1 of 1", "Payee: SAFEWAY")
	assert.Contains(t, box, "Transaction 1 of 1")
	assert.Contains(t, box, "Payee: SAFEWAY")
}
