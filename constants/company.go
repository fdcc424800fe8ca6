package constants

// GuaranteedBuyer is the canonical name of the regulated energy buyer.
// Only acts issued to it and payments received from it are tracked.
const GuaranteedBuyer = "ГАРАНТОВАНИЙ ПОКУПЕЦЬ"

// UnknownName is the placeholder for a company or counterparty that could
// not be resolved. Downstream validation rejects records carrying it.
const UnknownName = "Не визначено"

// DefaultEDRPOUCompanies maps 8-digit registration codes to canonical
// company names. Used to resolve the issuing company of a guaranteed-buyer
// act from a code embedded in the filename or document body.
var DefaultEDRPOUCompanies = map[string]string{
	"41188319": "ПЕРВОМАЙСЬК",
	"42428440": "ТЕРСЛАВ",
}
