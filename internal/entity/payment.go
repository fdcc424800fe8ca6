package entity

// PaymentRecord represents a single incoming bank payment. Only credit
// (incoming) transactions are ever materialized as records; debit rows
// and blocks are discarded during extraction.
type PaymentRecord struct {
	Company      string  `json:"company"`
	Counterparty string  `json:"counterparty"`
	Amount       float64 `json:"amount"`
	Period       string  `json:"period"`                 // MM-YYYY
	PaymentDate  string  `json:"payment_date,omitempty"` // YYYY-MM-DD
	Purpose      string  `json:"purpose,omitempty"`
	SourcePath   string  `json:"source_path,omitempty"`
}
