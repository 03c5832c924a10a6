package dto

// SuspensionResponse response.
type SuspensionResponse struct {
	User               UserSummary `json:"user"`
	ListingsDowngraded int64       `json:"listings_downgraded"`
}
