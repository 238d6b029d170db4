package utils

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error            string            `json:"error"`
	Code             string            `json:"code"`
	Fields           map[string]string `json:"fields,omitempty"`
	TicketID         string            `json:"ticket_id,omitempty"`
	VerificationCode string            `json:"verification_code,omitempty"`
}
