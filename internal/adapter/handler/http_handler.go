package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rl1809/tirehouse-pos/internal/core/domain"
	"github.com/rl1809/tirehouse-pos/internal/core/service"
	"github.com/rl1809/tirehouse-pos/internal/port"
)

type HTTPHandler struct {
	inventory *service.InventoryService
	stock     *service.StockService
	checkout  *service.CheckoutService
	reports   *service.ReportService
	settings  port.SettingsRepository
}

func NewHTTPHandler(
	inventory *service.InventoryService,
	stock *service.StockService,
	checkout *service.CheckoutService,
	reports *service.ReportService,
	settings port.SettingsRepository,
) *HTTPHandler {
	return &HTTPHandler{
		inventory: inventory,
		stock:     stock,
		checkout:  checkout,
		reports:   reports,
		settings:  settings,
	}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)

	mux.HandleFunc("GET /api/items", h.ListItems)
	mux.HandleFunc("POST /api/items", h.CreateItem)
	mux.HandleFunc("PUT /api/items/{id}", h.UpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", h.DeleteItem)
	mux.HandleFunc("POST /api/items/{id}/adjust", h.AdjustItemStock)
	mux.HandleFunc("GET /api/items/barcode/{code}", h.LookupBarcode)

	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("GET /api/sales", h.ListSales)

	mux.HandleFunc("GET /api/reports/summary", h.ReportSummary)
	mux.HandleFunc("GET /api/reports/top-items", h.ReportTopItems)
	mux.HandleFunc("GET /api/reports/low-stock", h.ReportLowStock)
	mux.HandleFunc("GET /api/reports/categories", h.ReportCategories)

	mux.HandleFunc("GET /api/settings", h.GetSettings)
	mux.HandleFunc("PUT /api/settings", h.UpdateSettings)
}

type itemPayload struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Barcode     string `json:"barcode"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	TireSize    string `json:"tire_size"`
	PriceCents  int64  `json:"price_cents"`
	Quantity    int    `json:"quantity"`
	MinStock    int    `json:"min_stock"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func toItemPayload(it domain.Item) itemPayload {
	return itemPayload{
		ID:          it.ID,
		Name:        it.Name,
		Brand:       it.Brand,
		Barcode:     it.Barcode,
		Category:    it.Category,
		SubCategory: it.SubCategory,
		TireSize:    it.TireSize,
		PriceCents:  int64(it.PriceCents),
		Quantity:    it.Quantity,
		MinStock:    it.MinStock,
		Description: it.Description,
		CreatedAt:   it.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   it.UpdatedAt.Format(time.RFC3339),
	}
}

func (p itemPayload) toDomain() domain.Item {
	return domain.Item{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Barcode:     p.Barcode,
		Category:    p.Category,
		SubCategory: p.SubCategory,
		TireSize:    p.TireSize,
		PriceCents:  domain.Cents(p.PriceCents),
		Quantity:    p.Quantity,
		MinStock:    p.MinStock,
		Description: p.Description,
	}
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]itemPayload, 0, len(items))
	for _, it := range items {
		out = append(out, toItemPayload(it))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var p itemPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return
	}

	created, err := h.inventory.Create(r.Context(), p.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemPayload(*created))
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var p itemPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return
	}
	p.ID = r.PathValue("id")

	updated, err := h.inventory.Update(r.Context(), p.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemPayload(*updated))
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.Deactivate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

type adjustResponse struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// AdjustItemStock applies a signed restock/correction delta.
func (h *HTTPHandler) AdjustItemStock(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return
	}
	if req.Delta == 0 {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "delta must be non-zero"})
		return
	}

	id := r.PathValue("id")
	var newQty int
	var err error
	if req.Delta > 0 {
		newQty, err = h.stock.Increment(r.Context(), id, req.Delta)
	} else {
		newQty, err = h.stock.Decrement(r.Context(), id, -req.Delta)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adjustResponse{ItemID: id, Quantity: newQty})
}

func (h *HTTPHandler) LookupBarcode(w http.ResponseWriter, r *http.Request) {
	item, err := h.stock.LookupByBarcode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemPayload(*item))
}

type checkoutLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type checkoutRequest struct {
	RequestID         string         `json:"request_id"`
	CustomerName      string         `json:"customer_name"`
	CustomerPhone     string         `json:"customer_phone"`
	Lines             []checkoutLine `json:"lines"`
	RepairFeeCents    int64          `json:"repair_fee_cents"`
	RepairDescription string         `json:"repair_description"`
}

type saleItemPayload struct {
	ItemID        string `json:"item_id"`
	Name          string `json:"name"`
	PriceCents    int64  `json:"price_cents"`
	Quantity      int    `json:"quantity"`
	SubtotalCents int64  `json:"subtotal_cents"`
}

type salePayload struct {
	ID                string            `json:"id"`
	BillNumber        string            `json:"bill_number"`
	CustomerName      string            `json:"customer_name"`
	CustomerPhone     string            `json:"customer_phone"`
	Items             []saleItemPayload `json:"items"`
	RepairFeeCents    int64             `json:"repair_fee_cents"`
	RepairDescription string            `json:"repair_description"`
	TotalCents        int64             `json:"total_cents"`
	Total             string            `json:"total"`
	Cashier           string            `json:"cashier"`
	CreatedAt         string            `json:"created_at"`
}

func toSalePayload(s domain.Sale) salePayload {
	out := salePayload{
		ID:                s.ID,
		BillNumber:        s.BillNumber,
		CustomerName:      s.CustomerName,
		CustomerPhone:     s.CustomerPhone,
		RepairFeeCents:    int64(s.RepairFeeCents),
		RepairDescription: s.RepairDescription,
		TotalCents:        int64(s.TotalCents),
		Total:             s.TotalCents.String(),
		Cashier:           s.Cashier,
		CreatedAt:         s.CreatedAt.Format(time.RFC3339),
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, saleItemPayload{
			ItemID:        it.ItemID,
			Name:          it.Name,
			PriceCents:    int64(it.PriceCents),
			Quantity:      it.Quantity,
			SubtotalCents: int64(it.SubtotalCents()),
		})
	}
	return out
}

// Checkout rebuilds the cart server-side from live items, then hands it to
// the coordinator. Receipt rendering is the caller's concern; by the time
// this returns the sale is already committed.
func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return
	}

	cart := domain.NewCart()
	for _, line := range req.Lines {
		if line.ItemID == "" || line.Quantity < 1 {
			writeJSON(w, http.StatusBadRequest, errorPayload{Error: "each line needs an item_id and a positive quantity"})
			return
		}
		item, err := h.inventory.Get(r.Context(), line.ItemID)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := cart.AddLine(*item, line.Quantity); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.RepairFeeCents != 0 || req.RepairDescription != "" {
		cart.SetAdjustment(domain.Cents(req.RepairFeeCents), req.RepairDescription)
	}

	sale, err := h.checkout.Checkout(r.Context(), cart, service.CustomerInfo{
		Name:      req.CustomerName,
		Phone:     req.CustomerPhone,
		RequestID: req.RequestID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSalePayload(*sale))
}

func (h *HTTPHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: err.Error()})
		return
	}

	sales, err := h.reports.Sales(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]salePayload, 0, len(sales))
	for _, s := range sales {
		out = append(out, toSalePayload(s))
	}
	writeJSON(w, http.StatusOK, out)
}

type summaryPayload struct {
	Count        int    `json:"count"`
	RevenueCents int64  `json:"revenue_cents"`
	Revenue      string `json:"revenue"`
	AverageCents int64  `json:"average_cents"`
}

func (h *HTTPHandler) ReportSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: err.Error()})
		return
	}

	sum, err := h.reports.Summary(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryPayload{
		Count:        sum.Count,
		RevenueCents: int64(sum.RevenueCents),
		Revenue:      sum.RevenueCents.String(),
		AverageCents: int64(sum.AverageCents),
	})
}

type topItemPayload struct {
	ItemID       string `json:"item_id"`
	Name         string `json:"name"`
	QuantitySold int    `json:"quantity_sold"`
	RevenueCents int64  `json:"revenue_cents"`
}

func (h *HTTPHandler) ReportTopItems(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: err.Error()})
		return
	}

	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeJSON(w, http.StatusBadRequest, errorPayload{Error: "limit must be a positive integer"})
			return
		}
	}

	ranked, err := h.reports.TopSellingItems(r.Context(), from, to, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]topItemPayload, 0, len(ranked))
	for _, e := range ranked {
		out = append(out, topItemPayload{
			ItemID:       e.ItemID,
			Name:         e.Name,
			QuantitySold: e.QuantitySold,
			RevenueCents: int64(e.RevenueCents),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) ReportLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.reports.LowStockItems(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]itemPayload, 0, len(items))
	for _, it := range items {
		out = append(out, toItemPayload(it))
	}
	writeJSON(w, http.StatusOK, out)
}

type categoryPayload struct {
	Category   string `json:"category"`
	Quantity   int    `json:"quantity"`
	ValueCents int64  `json:"value_cents"`
}

func (h *HTTPHandler) ReportCategories(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.CategoryBreakdown(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]categoryPayload, 0, len(stats))
	for _, s := range stats {
		out = append(out, categoryPayload{Category: s.Category, Quantity: s.Quantity, ValueCents: int64(s.ValueCents)})
	}
	writeJSON(w, http.StatusOK, out)
}

type settingsPayload struct {
	ShopName      string `json:"shop_name"`
	AdminPassword string `json:"admin_password"`
	Currency      string `json:"currency"`
}

func (h *HTTPHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.GetSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsPayload{ShopName: s.ShopName, AdminPassword: s.AdminPassword, Currency: s.Currency})
}

func (h *HTTPHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var p settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return
	}
	if p.ShopName == "" {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "shop_name required"})
		return
	}

	s := domain.Settings{ShopName: p.ShopName, AdminPassword: p.AdminPassword, Currency: p.Currency}
	if s.Currency == "" {
		s.Currency = domain.DefaultSettings().Currency
	}
	if err := h.settings.UpdateSettings(r.Context(), s); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsPayload{ShopName: s.ShopName, AdminPassword: s.AdminPassword, Currency: s.Currency})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := parseDate(r.URL.Query().Get("from"), false)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid 'from' date")
	}
	to, err := parseDate(r.URL.Query().Get("to"), true)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid 'to' date")
	}
	return from, to, nil
}

// parseDate accepts RFC3339 or a bare date. A bare "to" date covers the
// whole day.
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

type errorPayload struct {
	Error     string `json:"error"`
	ItemID    string `json:"item_id,omitempty"`
	Available int    `json:"available,omitempty"`
	Requested int    `json:"requested,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var ise *domain.InsufficientStockError
	switch {
	case errors.As(err, &ise):
		writeJSON(w, http.StatusConflict, errorPayload{
			Error:     "insufficient stock",
			ItemID:    ise.ItemID,
			Available: ise.Available,
			Requested: ise.Requested,
		})
	case errors.Is(err, service.ErrDuplicateRequest):
		writeJSON(w, http.StatusConflict, errorPayload{Error: "duplicate request"})
	case errors.Is(err, domain.ErrBarcodeTaken):
		writeJSON(w, http.StatusConflict, errorPayload{Error: "barcode already in use"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorPayload{Error: "item not found"})
	case errors.Is(err, domain.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "cart is empty"})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
