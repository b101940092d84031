package payments

// InitializeRequest is the payload handed to the gateway to open a
// checkout session. Amount is in minor units of the given currency.
type InitializeRequest struct {
	AmountMinor int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Email       string            `json:"email"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Authorization is the gateway's checkout handle returned on initialization
type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// TransactionStatus is the gateway-reported state of a transaction
type TransactionStatus string

const (
	TransactionSuccess   TransactionStatus = "success"
	TransactionFailed    TransactionStatus = "failed"
	TransactionAbandoned TransactionStatus = "abandoned"
	TransactionPending   TransactionStatus = "pending"
)

// VerifyResult is the gateway's answer to a server-side verification call
type VerifyResult struct {
	Status      TransactionStatus `json:"status"`
	Reference   string            `json:"reference"`
	AmountMinor int64             `json:"amount"`
	Currency    string            `json:"currency"`
	PaidAt      string            `json:"paid_at,omitempty"`
}

// Succeeded reports whether the gateway captured the payment
func (v *VerifyResult) Succeeded() bool {
	return v.Status == TransactionSuccess
}
