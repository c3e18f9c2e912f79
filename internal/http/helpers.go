package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/thechaz2/budget-app/internal/core"
)

// DTOs for the JSON API. Wire shapes are pinned by the front end.
type (
	monthDTO struct {
		ID int64  `json:"id"`
		YM string `json:"ym"`
	}

	billDTO struct {
		ID        int64   `json:"id"`
		Name      string  `json:"name"`
		Amount    float64 `json:"amount"`
		Date      string  `json:"date"`
		Quarterly bool    `json:"quarterly"`
	}

	moneyInDTO struct {
		ID     int64   `json:"id"`
		Source string  `json:"source"`
		Amount float64 `json:"amount"`
		Date   string  `json:"date"`
	}
)

func toMonthDTO(m core.Month) monthDTO {
	return monthDTO{ID: m.ID, YM: m.YM}
}

func toBillDTO(b core.Bill) billDTO {
	return billDTO{ID: b.ID, Name: b.Name, Amount: b.Amount, Date: b.Date, Quarterly: b.Quarterly}
}

func toMoneyInDTO(mi core.MoneyIn) moneyInDTO {
	return moneyInDTO{ID: mi.ID, Source: mi.Source, Amount: mi.Amount, Date: mi.Date}
}

// writeJSON serializes v and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"encoding failure"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes the standard error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// pathID parses the trailing path segment of prefix-routed delete endpoints.
func pathID(path, prefix string) (int64, bool) {
	idStr := path[len(prefix):]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
