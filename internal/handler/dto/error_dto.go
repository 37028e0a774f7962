package dto

type APIErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`

	// Set only for insufficient credits on the metered API.
	Balance  string `json:"balance,omitempty"`
	Cost     string `json:"cost,omitempty"`
	TopUpURL string `json:"top_up_url,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
