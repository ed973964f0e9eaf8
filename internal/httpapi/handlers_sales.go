package httpapi

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"retaildesk/backend/internal/domain"
)

func (a *API) handleCart(w http.ResponseWriter, r *http.Request) {
	a.cartMu.Lock()
	defer a.cartMu.Unlock()

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"lines": a.cart.Lines(),
			"total": a.cart.Total(),
		})
	case http.MethodDelete:
		a.cart.Clear()
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCartLines(w http.ResponseWriter, r *http.Request) {
	a.cartMu.Lock()
	defer a.cartMu.Unlock()

	switch r.Method {
	case http.MethodPost:
		var req domain.AddLineRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		line, err := a.service.AddLineToCart(r.Context(), a.cart, req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"line":  line,
			"total": a.cart.Total(),
		})
	case http.MethodPatch:
		var req domain.EditLineRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := a.service.EditLine(r.Context(), a.cart, req); err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"lines": a.cart.Lines(),
			"total": a.cart.Total(),
		})
	default:
		writeMethodNotAllowed(w)
	}
}

// handleCartLineActions removes the line at /api/v1/cart/lines/{index}. An
// index past the end leaves the cart as it is.
func (a *API) handleCartLineActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}
	raw, rest := pathParam(r, "/api/v1/cart/lines/")
	index, err := strconv.Atoi(raw)
	if err != nil || rest != "" {
		writeError(w, http.StatusBadRequest, errors.New("line index must be an integer"))
		return
	}

	a.cartMu.Lock()
	defer a.cartMu.Unlock()
	a.service.RemoveLine(r.Context(), a.cart, index)
	writeJSON(w, http.StatusOK, map[string]any{
		"lines": a.cart.Lines(),
		"total": a.cart.Total(),
	})
}

func (a *API) handleCartCommit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	a.cartMu.Lock()
	defer a.cartMu.Unlock()
	result, err := a.service.CommitCart(r.Context(), a.cart)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (a *API) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		txs := a.service.ListTransactions(r.Context())
		limit := parsePositiveLimit(r.URL.Query().Get("limit"), len(txs), 0)
		if limit < len(txs) {
			txs = txs[len(txs)-limit:]
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
	case http.MethodPost:
		if !allowRoles(w, r, managerRole...) {
			return
		}
		var draft domain.TransactionDraft
		if err := decodeJSON(r, &draft); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		tx, err := a.service.AddTransaction(r.Context(), draft)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleSummaryReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	start, err := parseReportTime(query.Get("start"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("start: %w", err))
		return
	}
	end, err := parseReportTime(query.Get("end"), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("end: %w", err))
		return
	}

	summary, err := a.service.FinancialSummary(r.Context(), start, end)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	switch strings.ToLower(strings.TrimSpace(query.Get("format"))) {
	case "csv":
		body, err := summaryToCSV(summary)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"summary-%s-%s.csv\"",
			summary.Start.Format(time.DateOnly), summary.End.Format(time.DateOnly)))
		_, _ = w.Write(body)
	default:
		writeJSON(w, http.StatusOK, summary)
	}
}

// parseReportTime accepts RFC3339 or YYYY-MM-DD. A bare end date covers the
// whole day.
func parseReportTime(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not an RFC3339 time or YYYY-MM-DD date", raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t, nil
}

func summaryToCSV(summary domain.FinancialSummary) ([]byte, error) {
	rows := [][]string{
		{"section", "key", "value"},
		{"summary", "start", summary.Start.Format(time.RFC3339)},
		{"summary", "end", summary.End.Format(time.RFC3339)},
		{"summary", "total_sales", summary.TotalSales.StringFixed(2)},
		{"summary", "total_expenses", summary.TotalExpenses.StringFixed(2)},
		{"summary", "profit", summary.Profit.StringFixed(2)},
		{"summary", "total_purchases", summary.TotalPurchases.StringFixed(2)},
		{"summary", "sales_count", strconv.Itoa(summary.SalesCount)},
		{"summary", "items_sold", strconv.Itoa(summary.ItemsSold)},
	}
	for _, seller := range summary.TopSellingProducts {
		rows = append(rows,
			[]string{"top_seller", seller.Name + "_quantity", strconv.Itoa(seller.Quantity)},
			[]string{"top_seller", seller.Name + "_revenue", seller.Revenue.StringFixed(2)},
		)
	}
	for _, expense := range summary.ExpensesByCategory {
		rows = append(rows, []string{"expense", expense.Category, expense.Amount.StringFixed(2)})
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
