package worker

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeExecution(t *testing.T) {
	for _, c := range []struct {
		name         string
		amount       string
		price        string
		wantQuantity string
		wantAmount   string
	}{
		{"exact division", "500", "2000", "0.25", "500"},
		{"rounds down", "500", "7000", "0.07142857", "499.99999"},
		{"rounds up", "500", "1800", "0.27777778", "500.000004"},
		{"tiny order", "0.01", "3000", "0.00000333", "0.00999"},
	} {
		t.Run(c.name, func(t *testing.T) {
			quantity, executedAmount := computeExecution(
				decimal.RequireFromString(c.amount),
				decimal.RequireFromString(c.price),
			)
			assert.True(t, quantity.Equal(decimal.RequireFromString(c.wantQuantity)),
				"quantity %s", quantity)
			assert.True(t, executedAmount.Equal(decimal.RequireFromString(c.wantAmount)),
				"executed amount %s", executedAmount)
		})
	}
}
