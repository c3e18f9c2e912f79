package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/thechaz2/budget-app/internal/core"
	"github.com/thechaz2/budget-app/internal/ledger"
	applog "github.com/thechaz2/budget-app/internal/log"
)

// handleLedgerError maps ledger/core errors to status codes. Input errors
// become 400s; everything else is an internal failure surfaced as 500 with
// the error's message, and the process keeps serving.
func handleLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidYearMonth),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptySource):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err,
			applog.FieldPath, r.URL.Path)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleListMonths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if months, ok := s.monthsCache.Get(monthsCacheKey); ok {
		writeMonthList(w, months)
		return
	}

	months, err := s.months.ListMonths(r.Context())
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}
	s.monthsCache.Set(monthsCacheKey, months)
	writeMonthList(w, months)
}

func writeMonthList(w http.ResponseWriter, months []core.Month) {
	resp := make([]monthDTO, 0, len(months))
	for _, m := range months {
		resp = append(resp, toMonthDTO(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ym := strings.TrimSpace(r.URL.Query().Get("ym"))
	if ym == "" {
		writeError(w, http.StatusBadRequest, "Missing ym query param")
		return
	}

	key, err := core.NormalizeYM(ym)
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}

	if bills, ok := s.billsCache.Get(key); ok {
		writeBillList(w, bills)
		return
	}

	bills, err := s.bills.ListBills(r.Context(), key)
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}
	s.billsCache.Set(key, bills)
	writeBillList(w, bills)
}

func writeBillList(w http.ResponseWriter, bills []core.Bill) {
	resp := make([]billDTO, 0, len(bills))
	for _, b := range bills {
		resp = append(resp, toBillDTO(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMoneyIns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ym := strings.TrimSpace(r.URL.Query().Get("ym"))
	if ym == "" {
		writeError(w, http.StatusBadRequest, "Missing ym query param")
		return
	}

	key, err := core.NormalizeYM(ym)
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}

	if moneyIns, ok := s.moneyInsCache.Get(key); ok {
		writeMoneyInList(w, moneyIns)
		return
	}

	moneyIns, err := s.incomes.ListMoneyIns(r.Context(), key)
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}
	s.moneyInsCache.Set(key, moneyIns)
	writeMoneyInList(w, moneyIns)
}

func writeMoneyInList(w http.ResponseWriter, moneyIns []core.MoneyIn) {
	resp := make([]moneyInDTO, 0, len(moneyIns))
	for _, mi := range moneyIns {
		resp = append(resp, toMoneyInDTO(mi))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddMonth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body := ParseBody(r)
	ym := body.Get("ym")
	if ym == "" {
		writeError(w, http.StatusBadRequest, "Missing 'ym' in body")
		return
	}

	month, err := s.months.EnsureMonth(r.Context(), ym)
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}

	s.invalidateMonths()
	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "ok",
		"month":  toMonthDTO(month),
	})
}

func (s *Server) handleDeleteMonth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body := ParseBody(r)
	ym := body.Get("ym")
	if ym == "" {
		writeError(w, http.StatusBadRequest, "Missing 'ym' in body")
		return
	}

	key, err := core.NormalizeYM(ym)
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}

	if err := s.months.DeleteMonth(r.Context(), key); err != nil {
		if errors.Is(err, ledger.ErrMonthNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"status": "not_found",
				"ym":     key,
			})
			return
		}
		handleLedgerError(w, r, err)
		return
	}

	s.invalidateMonths()
	s.invalidateBills(key)
	s.invalidateMoneyIns(key)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"deleted": key,
	})
}

func (s *Server) handleAddBill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body := ParseBody(r)
	ym := body.Get("ym")
	name := body.Get("name")
	if ym == "" || name == "" || !body.Has("amount") {
		writeError(w, http.StatusBadRequest, "Body must include ym, name, amount")
		return
	}
	amount, err := body.Amount("amount")
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a number")
		return
	}

	bill, err := s.bills.AddBill(r.Context(), ym, core.Bill{
		Name:      name,
		Amount:    amount,
		Date:      body.Get("date"),
		Quarterly: body.Bool("quarterly"),
	})
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}

	s.invalidateMonths() // adding a bill may create the month
	s.invalidateBills("")
	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "ok",
		"bill":   toBillDTO(bill),
	})
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body := ParseBody(r)
	id, ok := body.ID("id")
	name := body.Get("name")
	if !ok || name == "" || !body.Has("amount") {
		writeError(w, http.StatusBadRequest, "Body must include id, name, amount")
		return
	}
	amount, err := body.Amount("amount")
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a number")
		return
	}

	// Unknown ids affect zero rows and still report success.
	bill, err := s.bills.UpdateBill(r.Context(), core.Bill{
		ID:        id,
		Name:      name,
		Amount:    amount,
		Date:      body.Get("date"),
		Quarterly: body.Bool("quarterly"),
	})
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}

	s.invalidateBills("")
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"bill":   toBillDTO(bill),
	})
}

func (s *Server) handleAddMoneyIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body := ParseBody(r)
	ym := body.Get("ym")
	source := body.Get("source")
	if ym == "" || source == "" || !body.Has("amount") {
		writeError(w, http.StatusBadRequest, "Body must include ym, source, amount")
		return
	}
	amount, err := body.Amount("amount")
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a number")
		return
	}

	moneyIn, err := s.incomes.AddMoneyIn(r.Context(), ym, core.MoneyIn{
		Source: source,
		Amount: amount,
		Date:   body.Get("date"),
	})
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}

	s.invalidateMonths()
	s.invalidateMoneyIns("")
	writeJSON(w, http.StatusCreated, map[string]any{
		"status":   "ok",
		"money_in": toMoneyInDTO(moneyIn),
	})
}

func (s *Server) handleUpdateMoneyIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body := ParseBody(r)
	id, ok := body.ID("id")
	source := body.Get("source")
	if !ok || source == "" || !body.Has("amount") {
		writeError(w, http.StatusBadRequest, "Body must include id, source, amount")
		return
	}
	amount, err := body.Amount("amount")
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a number")
		return
	}

	moneyIn, err := s.incomes.UpdateMoneyIn(r.Context(), core.MoneyIn{
		ID:     id,
		Source: source,
		Amount: amount,
		Date:   body.Get("date"),
	})
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}

	s.invalidateMoneyIns("")
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"money_in": toMoneyInDTO(moneyIn),
	})
}

func (s *Server) handleUpdateBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body := ParseBody(r)
	ym := body.Get("ym")
	if ym == "" || !body.Has("closing_balance") {
		writeError(w, http.StatusBadRequest, "Body must include ym and closing_balance")
		return
	}
	value, err := body.Amount("closing_balance")
	if err != nil {
		writeError(w, http.StatusBadRequest, "closing_balance must be a number")
		return
	}

	key, err := core.NormalizeYM(ym)
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}

	// Unknown ym is silently a no-op.
	if err := s.months.UpdateClosingBalance(r.Context(), key, value); err != nil {
		handleLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"ym":              key,
		"closing_balance": value,
	})
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := pathID(r.URL.Path, "/delete_bill/")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	// Delete-if-exists: absent ids still report success.
	if err := s.bills.DeleteBill(r.Context(), id); err != nil {
		handleLedgerError(w, r, err)
		return
	}

	s.invalidateBills("")
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"deleted_id": id,
	})
}

func (s *Server) handleDeleteMoneyIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := pathID(r.URL.Path, "/delete_money_in/")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid money-in id")
		return
	}

	if err := s.incomes.DeleteMoneyIn(r.Context(), id); err != nil {
		handleLedgerError(w, r, err)
		return
	}

	s.invalidateMoneyIns("")
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"deleted_id": id,
	})
}
