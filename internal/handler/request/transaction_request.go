package request

import "encoding/json"

type TransactionHashURI struct {
	Hash string `uri:"hash" binding:"required,len=64,hexadecimal"`
}

type RecordResultRequest struct {
	Status string          `json:"status" binding:"required,oneof=New DryRun Pending Accepted Rejected InvalidTransaction OnlyFeeAccepted" example:"Accepted"`
	Result json.RawMessage `json:"result" swaggertype:"object"`
}
