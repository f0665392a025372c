package models

import "time"

// Кошелек пока отдает демо-данные, поэтому эти типы не хранятся в БД —
// это только формат ответа API.

type WalletBalance struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type WalletTransaction struct {
	ID          string    `json:"id"`
	Direction   string    `json:"direction"` // credit | debit
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Description string    `json:"description"`
	Status      string    `json:"status"` // settled | processing
	OccurredAt  time.Time `json:"occurred_at"`
	CourseID    *uint     `json:"course_id,omitempty"`
	CourseTitle string    `json:"course_title,omitempty"`
}

type WalletInvoice struct {
	ID        string    `json:"id"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"` // paid | open
	IssuedAt  time.Time `json:"issued_at"`
	DueAt     time.Time `json:"due_at"`
	Reference string    `json:"reference"`
}
