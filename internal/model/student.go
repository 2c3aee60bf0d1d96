package model

// Student is a registered submitter of reimbursement requests.
type Student struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	IBAN   string `json:"iban"`
	CardID string `json:"card_id"` // registered transport card identifier
}
