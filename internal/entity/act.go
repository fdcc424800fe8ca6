package entity

// ActRecord represents a service-delivery act extracted from a PDF,
// for data transfer between the extraction and persistence layers.
//
// Amount and Period are always present in a record returned by the act
// extractor; a record missing either is never constructed.
type ActRecord struct {
	ActNumber       string   `json:"act_number,omitempty"`
	ActDate         string   `json:"act_date,omitempty"` // YYYY-MM-DD
	ContractNumber  string   `json:"contract_number,omitempty"`
	Executor        string   `json:"executor"`
	Customer        string   `json:"customer"`
	Amount          float64  `json:"amount"`
	EnergyVolume    *float64 `json:"energy_volume,omitempty"`
	CostWithoutVAT  *float64 `json:"cost_without_vat,omitempty"`
	PriceWithoutVAT *float64 `json:"price_without_vat,omitempty"`
	Period          string   `json:"period"` // MM-YYYY
	SourcePath      string   `json:"source_path"`
}
