package event

const (
	TypeTransactionBuilt  = "transaction.built"
	TypeTransactionResult = "transaction.result"
)

// TransactionBuiltEvent 交易构建事件
// Topic: tari.events_topic (默认 tari.transactions)
type TransactionBuiltEvent struct {
	Type             string `json:"type"`
	Hash             string `json:"hash"`
	Network          string `json:"network"`
	RecipeDigest     string `json:"recipe_digest,omitempty"`
	InstructionCount int    `json:"instruction_count"`
	FeeInstructions  int    `json:"fee_instruction_count"`
}

// TransactionResultEvent 交易最终结果事件
type TransactionResultEvent struct {
	Type   string `json:"type"`
	Hash   string `json:"hash"`
	Status string `json:"status"`
}
