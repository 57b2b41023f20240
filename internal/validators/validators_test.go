package validators

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErr "github.com/brandlink/engine/pkg/errors"
)

type moneyInput struct {
	Name   string          `json:"name" validate:"required,notblank"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
	Status string          `json:"status" validate:"omitempty,oneof=active closed"`
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		in     moneyInput
		fields []string
	}{
		{name: "valid", in: moneyInput{Name: "Acme", Amount: decimal.NewFromInt(10)}},
		{name: "blank name", in: moneyInput{Name: "   "}, fields: []string{"name"}},
		{name: "negative amount", in: moneyInput{Name: "Acme", Amount: decimal.NewFromInt(-1)}, fields: []string{"amount"}},
		{name: "bad status", in: moneyInput{Name: "Acme", Status: "paused"}, fields: []string{"status"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.in)
			if tt.fields == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ae *appErr.AppError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, appErr.CodeInvalid, ae.Code)
			assert.Equal(t, tt.fields, ae.Meta["fields"])
		})
	}
}

func TestVar(t *testing.T) {
	require.NoError(t, Var("email", "lina@example.com", "required,email"))

	err := Var("email", "not-an-email", "required,email")
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}
