package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertStringToTransactionStatus(t *testing.T) {
	tests := []struct {
		in        string
		want      TransactionStatus
		finalized bool
	}{
		{"New", TransactionStatusNew, false},
		{"DryRun", TransactionStatusDryRun, true},
		{"Pending", TransactionStatusPending, false},
		{"Accepted", TransactionStatusAccepted, true},
		{"Rejected", TransactionStatusRejected, true},
		{"InvalidTransaction", TransactionStatusInvalidTransaction, true},
		{"OnlyFeeAccepted", TransactionStatusOnlyFeeAccepted, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ConvertStringToTransactionStatus(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
			assert.Equal(t, tt.finalized, got.IsFinalized())
		})
	}

	_, err := ConvertStringToTransactionStatus("accepted")
	assert.Error(t, err)

	assert.ElementsMatch(t,
		[]string{"DryRun", "Accepted", "Rejected", "InvalidTransaction", "OnlyFeeAccepted"},
		FinalizedStatusNames())
}

func TestTransactionResultResponseDecode(t *testing.T) {
	var resp GetTransactionResultResponse
	err := json.Unmarshal([]byte(`{"transaction_id":"abc","status":"OnlyFeeAccepted","result":{"fee":1}}`), &resp)
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusOnlyFeeAccepted, resp.Status)
	assert.JSONEq(t, `{"fee":1}`, string(resp.Result))
}

func TestParseNetwork(t *testing.T) {
	tests := map[string]Network{
		"igor":      Igor,
		"Esmeralda": Esmeralda,
		"16":        LocalNet,
		"0x02":      NextNet,
		"mainnet":   MainNet,
	}
	for in, want := range tests {
		got, err := ParseNetwork(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseNetwork("moon")
	assert.Error(t, err)
	_, err = ParseNetwork("300")
	assert.Error(t, err)
}

func TestParseXTR(t *testing.T) {
	a, err := ParseXTR("1.25")
	require.NoError(t, err)
	assert.Equal(t, Amount(1_250_000), a)
	assert.True(t, a.XTR().Equal(decimal.RequireFromString("1.25")))

	a, err = ParseXTR("0.000001")
	require.NoError(t, err)
	assert.Equal(t, Amount(1), a)

	_, err = ParseXTR("0.0000001")
	assert.Error(t, err)
	_, err = ParseXTR("-1")
	assert.Error(t, err)
	_, err = ParseXTR("abc")
	assert.Error(t, err)
}
