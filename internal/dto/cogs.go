package dto

import (
	"time"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
)

// CalculateCOGSRequest carries the optional cut-off date for a calculation
// run. An empty date means today.
type CalculateCOGSRequest struct {
	ToDate string `json:"toDate" binding:"omitempty,datetime=2006-01-02"`
}

// ToDateValue parses the cut-off date; nil when absent.
func (r CalculateCOGSRequest) ToDateValue() *time.Time {
	if r.ToDate == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", r.ToDate)
	if err != nil {
		return nil
	}
	return &t
}

// SummaryResponse reports how a calculation run terminated.
type SummaryResponse struct {
	BookID    string `json:"bookID"`
	AccountID string `json:"accountID"`
	Result    string `json:"result"`
	Message   string `json:"message,omitempty"`
}

// ToSummaryResponse converts a domain.Summary to SummaryResponse DTO.
func ToSummaryResponse(s domain.Summary) SummaryResponse {
	return SummaryResponse{
		BookID:    s.BookID,
		AccountID: s.AccountID,
		Result:    string(s.Result),
		Message:   s.Message,
	}
}

// ValidateResponse reports the readiness check outcome.
type ValidateResponse struct {
	BookID string `json:"bookID"`
	Status string `json:"status"`
}
