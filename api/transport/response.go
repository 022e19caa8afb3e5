package transport

import (
	"encoding/json"

	"github.com/amankumar-in/univance/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Data       interface{}        `json:"data,omitempty"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(message string, data interface{}) Envelope {
	return Envelope{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// NewPage returns a success envelope carrying one page of a listing.
func NewPage(data interface{}, pagination domain.Pagination) Envelope {
	return Envelope{
		Success:    true,
		Data:       data,
		Pagination: &pagination,
	}
}

// NewError returns an error envelope. detail is omitted when empty.
func NewError(message, detail string) Envelope {
	return Envelope{
		Success: false,
		Message: message,
		Error:   detail,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
