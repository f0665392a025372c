package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Amnmlk2025/dunetube/internal/models"
)

// Кошелек пока демо: транзакции собираются из трех свежих курсов плюс
// фиксированные выплата и комиссия. Настоящего леджера здесь нет.

// GET /api/wallet/transactions/ (нужен вход)
func (h *Handler) HandleWalletTransactions(w http.ResponseWriter, r *http.Request) {
	var courses []models.Course
	if err := h.DB.Order("created_at desc").Limit(3).Find(&courses).Error; err != nil {
		h.Log.Errorw("не удалось получить курсы для кошелька", "error", err)
		jsonDetail(w, "database error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	transactions := []models.WalletTransaction{}

	saleOffsets := []time.Duration{
		-(2*24 + 4) * time.Hour,
		-(5*24 + 3) * time.Hour,
	}
	for i := 0; i < 2 && i < len(courses); i++ {
		course := courses[i]
		if course.PriceAmount <= 0 {
			continue
		}
		courseID := course.ID
		transactions = append(transactions, models.WalletTransaction{
			ID:          fmt.Sprintf("txn-%s-%03d", now.Format("20060102"), i+1),
			Direction:   "credit",
			Amount:      course.PriceAmount,
			Currency:    course.PriceCurrency,
			Description: "Sale • " + course.Title,
			Status:      "settled",
			OccurredAt:  now.Add(saleOffsets[i]),
			CourseID:    &courseID,
			CourseTitle: course.Title,
		})
	}

	transactions = append(transactions,
		models.WalletTransaction{
			ID:          fmt.Sprintf("txn-%s-003", now.Format("20060102")),
			Direction:   "debit",
			Amount:      75.00,
			Currency:    "USD",
			Description: "Creator payout",
			Status:      "processing",
			OccurredAt:  now.Add(-(24 + 1) * time.Hour),
		},
		models.WalletTransaction{
			ID:          fmt.Sprintf("txn-%s-004", now.Format("20060102")),
			Direction:   "debit",
			Amount:      15.00,
			Currency:    "USD",
			Description: "Platform fee",
			Status:      "settled",
			OccurredAt:  now.Add(-12 * 24 * time.Hour),
		},
	)

	balance := models.WalletBalance{Currency: "USD"}
	if len(transactions) > 0 {
		balance.Currency = transactions[0].Currency
	}
	for _, txn := range transactions {
		if txn.Direction == "credit" {
			balance.Amount += txn.Amount
		} else {
			balance.Amount -= txn.Amount
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"balance":      balance,
		"transactions": transactions,
	})
}

// GET /api/wallet/invoices/ (нужен вход)
func (h *Handler) HandleWalletInvoices(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	invoices := []models.WalletInvoice{
		{
			ID:        fmt.Sprintf("inv-%s-001", now.Format("200601")),
			Amount:    19.00,
			Currency:  "USD",
			Status:    "paid",
			IssuedAt:  now.Add(-34 * 24 * time.Hour),
			DueAt:     now.Add(-27 * 24 * time.Hour),
			Reference: "Creator workspace subscription · Last month",
		},
		{
			ID:        fmt.Sprintf("inv-%s-002", now.Format("200601")),
			Amount:    19.00,
			Currency:  "USD",
			Status:    "open",
			IssuedAt:  now.Add(-4 * 24 * time.Hour),
			DueAt:     now.Add(3 * 24 * time.Hour),
			Reference: "Creator workspace subscription · This month",
		},
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"invoices": invoices})
}
