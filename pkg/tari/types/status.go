package types

import (
	"encoding/json"
	"fmt"
)

// TransactionStatus 交易在网络中的处理状态
type TransactionStatus int

const (
	TransactionStatusNew TransactionStatus = iota
	TransactionStatusDryRun
	TransactionStatusPending
	TransactionStatusAccepted
	TransactionStatusRejected
	TransactionStatusInvalidTransaction
	TransactionStatusOnlyFeeAccepted
)

var transactionStatusNames = [...]string{
	TransactionStatusNew:                "New",
	TransactionStatusDryRun:             "DryRun",
	TransactionStatusPending:            "Pending",
	TransactionStatusAccepted:           "Accepted",
	TransactionStatusRejected:           "Rejected",
	TransactionStatusInvalidTransaction: "InvalidTransaction",
	TransactionStatusOnlyFeeAccepted:    "OnlyFeeAccepted",
}

func (s TransactionStatus) String() string {
	if s >= 0 && int(s) < len(transactionStatusNames) {
		return transactionStatusNames[s]
	}
	return fmt.Sprintf("TransactionStatus(%d)", int(s))
}

// IsFinalized reports whether the network will not change the status again.
func (s TransactionStatus) IsFinalized() bool {
	switch s {
	case TransactionStatusAccepted,
		TransactionStatusRejected,
		TransactionStatusInvalidTransaction,
		TransactionStatusOnlyFeeAccepted,
		TransactionStatusDryRun:
		return true
	}
	return false
}

// FinalizedStatusNames lists the names of all finalized statuses.
func FinalizedStatusNames() []string {
	var names []string
	for i, name := range transactionStatusNames {
		if TransactionStatus(i).IsFinalized() {
			names = append(names, name)
		}
	}
	return names
}

// ConvertStringToTransactionStatus maps the status names reported by wallets
// and indexers onto TransactionStatus.
func ConvertStringToTransactionStatus(s string) (TransactionStatus, error) {
	for i, name := range transactionStatusNames {
		if name == s {
			return TransactionStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown transaction status %q", s)
}

func (s TransactionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *TransactionStatus) UnmarshalText(text []byte) error {
	v, err := ConvertStringToTransactionStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// GetTransactionResultResponse is what a submission provider reports for a
// transaction id. Result is the provider's finalize result, kept opaque.
type GetTransactionResultResponse struct {
	TransactionID string            `json:"transaction_id"`
	Status        TransactionStatus `json:"status"`
	Result        json.RawMessage   `json:"result,omitempty"`
}
