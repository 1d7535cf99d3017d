package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/grahamu/smsgateway/internal/sms/app"
	"github.com/grahamu/smsgateway/internal/sms/domain"
)

// Sender is the send orchestrator surface the handler depends on.
type Sender interface {
	Send(ctx context.Context, req app.SendRequest) error
}

// Reporter is the reporting aggregator surface the handler depends on.
type Reporter interface {
	MostPopularCarriers(ctx context.Context, q domain.ReportQuery) ([]*domain.Carrier, error)
	MostContactedNumbers(ctx context.Context, q domain.ReportQuery) ([]*domain.PhoneNumber, error)
}

// SMSHandler exposes the gateway's REST surface: carrier registry admin,
// phone number store, send, and the two usage reports.
type SMSHandler struct {
	carriers    domain.CarrierRepository
	numbers     domain.PhoneNumberRepository
	sender      Sender
	reporter    Reporter
	defaultFrom string
	logger      *slog.Logger
	validate    *validator.Validate
}

func NewSMSHandler(
	carriers domain.CarrierRepository,
	numbers domain.PhoneNumberRepository,
	sender Sender,
	reporter Reporter,
	defaultFrom string,
	logger *slog.Logger,
) *SMSHandler {
	return &SMSHandler{
		carriers:    carriers,
		numbers:     numbers,
		sender:      sender,
		reporter:    reporter,
		defaultFrom: defaultFrom,
		logger:      logger.With("component", "sms_http_handler"),
		validate:    validator.New(),
	}
}

func (h *SMSHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.logger.Error("Failed to write JSON response", "error", err)
		}
	}
}

func (h *SMSHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

// mapDomainError converts domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var deliveryErr *domain.DeliveryError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateNumber), errors.Is(err, domain.ErrDuplicateCarrier):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMissingSender):
		return http.StatusBadRequest
	case errors.As(err, &deliveryErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RegisterRoutes sets up routing for the gateway API.
func (h *SMSHandler) RegisterRoutes(r chi.Router) {
	r.Post("/carriers", h.CreateCarrier)
	r.Get("/carriers", h.ListCarriers)
	r.Get("/carriers/{carrierID}", h.GetCarrier)
	r.Put("/carriers/{carrierID}", h.UpdateCarrier)
	r.Delete("/carriers/{carrierID}", h.DeleteCarrier)

	r.Post("/phone-numbers", h.CreatePhoneNumber)
	r.Get("/phone-numbers/{phoneNumberID}", h.GetPhoneNumber)
	r.Put("/phone-numbers/{phoneNumberID}", h.UpdatePhoneNumber)
	r.Delete("/phone-numbers/{phoneNumberID}", h.DeletePhoneNumber)
	r.Get("/owners/{ownerType}/{ownerID}/phone-numbers", h.ListOwnerPhoneNumbers)

	r.Post("/messages/send", h.SendMessage)

	r.Get("/reports/popular-carriers", h.MostPopularCarriers)
	r.Get("/reports/contacted-numbers", h.MostContactedNumbers)
}

// --- Carrier registry ---

func (h *SMSHandler) CreateCarrier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO CreateCarrierRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	carrier := domain.NewCarrier(uuid.New(), reqDTO.Name, reqDTO.Gateway)
	if err := h.carriers.Create(ctx, carrier); err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	h.respondWithJSON(w, http.StatusCreated, carrier)
}

func (h *SMSHandler) ListCarriers(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePagination(r)
	if limit <= 0 {
		limit = defaultListLimit
	}
	carriers, err := h.carriers.List(r.Context(), offset, limit)
	if err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	if carriers == nil {
		carriers = []*domain.Carrier{}
	}
	h.respondWithJSON(w, http.StatusOK, carriers)
}

func (h *SMSHandler) GetCarrier(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "carrierID"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid carrier ID")
		return
	}
	carrier, err := h.carriers.GetByID(r.Context(), id)
	if err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	h.respondWithJSON(w, http.StatusOK, carrier)
}

func (h *SMSHandler) UpdateCarrier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "carrierID"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid carrier ID")
		return
	}

	var reqDTO UpdateCarrierRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	carrier, err := h.carriers.GetByID(ctx, id)
	if err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	carrier.Name = reqDTO.Name
	carrier.Gateway = reqDTO.Gateway
	if err := h.carriers.Update(ctx, carrier); err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	h.respondWithJSON(w, http.StatusOK, carrier)
}

func (h *SMSHandler) DeleteCarrier(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "carrierID"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid carrier ID")
		return
	}
	if err := h.carriers.Delete(r.Context(), id); err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	h.respondWithJSON(w, http.StatusNoContent, nil)
}

// --- Phone number store ---

func (h *SMSHandler) CreatePhoneNumber(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO CreatePhoneNumberRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	carrierID, err := uuid.Parse(reqDTO.CarrierID)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid carrier ID")
		return
	}

	pn := domain.NewPhoneNumber(uuid.New(), reqDTO.OwnerType, reqDTO.OwnerID, carrierID,
		reqDTO.Digits, reqDTO.Description, reqDTO.IsPrimary)
	if err := h.numbers.Create(ctx, pn); err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	h.respondWithJSON(w, http.StatusCreated, pn)
}

func (h *SMSHandler) GetPhoneNumber(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "phoneNumberID"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid phone number ID")
		return
	}
	pn, err := h.numbers.GetByID(r.Context(), id)
	if err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	h.respondWithJSON(w, http.StatusOK, pn)
}

func (h *SMSHandler) UpdatePhoneNumber(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "phoneNumberID"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid phone number ID")
		return
	}

	var reqDTO UpdatePhoneNumberRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	carrierID, err := uuid.Parse(reqDTO.CarrierID)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid carrier ID")
		return
	}

	pn, err := h.numbers.GetByID(ctx, id)
	if err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	pn.CarrierID = carrierID
	pn.Digits = reqDTO.Digits
	pn.Description = reqDTO.Description
	pn.IsPrimary = reqDTO.IsPrimary
	if err := h.numbers.Update(ctx, pn); err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	pn.Carrier = nil // stale after a carrier change; callers re-fetch
	h.respondWithJSON(w, http.StatusOK, pn)
}

func (h *SMSHandler) DeletePhoneNumber(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "phoneNumberID"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid phone number ID")
		return
	}
	if err := h.numbers.Delete(r.Context(), id); err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	h.respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *SMSHandler) ListOwnerPhoneNumbers(w http.ResponseWriter, r *http.Request) {
	ownerType := chi.URLParam(r, "ownerType")
	ownerID := chi.URLParam(r, "ownerID")
	offset, limit := parsePagination(r)
	if limit <= 0 {
		limit = defaultListLimit
	}

	numbers, err := h.numbers.ListByOwner(r.Context(), ownerType, ownerID, offset, limit)
	if err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	if numbers == nil {
		numbers = []*domain.PhoneNumber{}
	}
	h.respondWithJSON(w, http.StatusOK, numbers)
}

// --- Send ---

func (h *SMSHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO SendMessageRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	fromAddress := reqDTO.FromAddress
	if fromAddress == "" {
		fromAddress = h.defaultFrom
	}

	recipients := make([]*domain.PhoneNumber, 0, len(reqDTO.RecipientIDs))
	for _, idStr := range reqDTO.RecipientIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			h.respondWithError(w, http.StatusBadRequest, "Invalid recipient ID: "+idStr)
			return
		}
		pn, err := h.numbers.GetByID(ctx, id)
		if err != nil {
			h.respondWithError(w, mapDomainError(err), err.Error())
			return
		}
		recipients = append(recipients, pn)
	}

	err := h.sender.Send(ctx, app.SendRequest{
		Message:      reqDTO.Message,
		FromAddress:  fromAddress,
		Recipients:   recipients,
		FailSilently: reqDTO.FailSilently,
		AuthUser:     reqDTO.AuthUser,
		AuthPassword: reqDTO.AuthPassword,
	})
	if err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	h.respondWithJSON(w, http.StatusAccepted, map[string]int{"recipients": len(recipients)})
}

// --- Reports ---

func (h *SMSHandler) MostPopularCarriers(w http.ResponseWriter, r *http.Request) {
	q, err := parseReportQuery(r)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	carriers, err := h.reporter.MostPopularCarriers(r.Context(), q)
	if err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	h.respondWithJSON(w, http.StatusOK, carriers)
}

func (h *SMSHandler) MostContactedNumbers(w http.ResponseWriter, r *http.Request) {
	q, err := parseReportQuery(r)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	numbers, err := h.reporter.MostContactedNumbers(r.Context(), q)
	if err != nil {
		h.respondWithError(w, mapDomainError(err), err.Error())
		return
	}
	h.respondWithJSON(w, http.StatusOK, numbers)
}

// --- Query parsing helpers ---

// defaultListLimit caps unbounded CRUD listings. The reports have their own
// default applied through domain.ReportQuery.
const defaultListLimit = 50

// parsePagination reads offset/limit query params. Limit is 0 when absent
// or invalid; callers apply their own default.
func parsePagination(r *http.Request) (offset, limit int) {
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return offset, limit
}

func parseReportQuery(r *http.Request) (domain.ReportQuery, error) {
	var q domain.ReportQuery
	q.Offset, q.Limit = parsePagination(r)

	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return q, errors.New("invalid 'start': expected RFC 3339 timestamp")
		}
		q.Start = &t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return q, errors.New("invalid 'end': expected RFC 3339 timestamp")
		}
		q.End = &t
	}
	return q, nil
}
