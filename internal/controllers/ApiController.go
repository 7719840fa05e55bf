package controllers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"wagerd/internal/models"
	"wagerd/internal/providers"
	"wagerd/internal/services"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	service services.TrackerServiceInterface
}

func NewApiController(logger providers.Logger, service services.TrackerServiceInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
	}
}

type quoteRequest struct {
	Book      models.Book `json:"book"`
	Unit      string      `json:"unit"`
	Timeframe string      `json:"timeframe"`
}

type draftRequest struct {
	Book      models.Book     `json:"book"`
	Unit      string          `json:"unit"`
	Timeframe string          `json:"timeframe"`
	Wager     decimal.Decimal `json:"wager"`
	Odds      string          `json:"odds"`
}

type removeRequest struct {
	BookID string `json:"bookId"`
	Kind   string `json:"kind"`
}

type idRequest struct {
	ID string `json:"id"`
}

// sessionRequest accepts unit numbers as JSON numbers or numeric strings.
type sessionRequest struct {
	ID        string `json:"id"`
	StartUnit any    `json:"startUnit"`
	EndUnit   any    `json:"endUnit"`
}

type engagementProgressRequest struct {
	ID    string `json:"id"`
	Goal  string `json:"goal"`
	Delta any    `json:"delta"`
}

type bookRequest struct {
	BookID string `json:"bookId"`
}

type commitmentsResponse struct {
	Commitments []services.ActiveView     `json:"commitments"`
	Engagements []services.EngagementView `json:"engagements"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func getReader(r *http.Request) string {
	reader := r.URL.Query().Get("r")
	if reader == "" {
		return services.DefaultReader
	}
	return reader
}

func (ac *ApiController) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		ac.writeError(w, r, fmt.Errorf("%w: %s", errBadRequest, err))
		return false
	}
	return true
}

func (ac *ApiController) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		ac.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: encode response: %s", r.Method, r.URL.Path, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logType := providers.GetLogTypeByRequestType(r.Method)
	if status >= http.StatusInternalServerError {
		ac.logger.Errorf(logType, "%s %s: %s", r.Method, r.URL.Path, err)
	} else {
		ac.logger.Debugf(logType, "%s %s: %s", r.Method, r.URL.Path, err)
	}
	ac.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

var errBadRequest = errors.New("bad request")

var badRequestErrors = []error{
	errBadRequest,
	services.ErrUnknownKind,
	models.ErrInvalidTimeframe,
	models.ErrInvalidOdds,
	models.ErrInvalidWager,
	models.ErrEmptyRange,
	models.ErrNoChapters,
	models.ErrInvalidUnit,
	models.ErrDayOutOfRange,
	models.ErrNoGoals,
	models.ErrInvalidGoal,
	models.ErrUnknownGoal,
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrStateMismatch),
		errors.Is(err, services.ErrCannotAdvance),
		errors.Is(err, services.ErrEmptySlip):
		return http.StatusConflict
	case errors.Is(err, services.ErrTooManyReaders):
		return http.StatusTooManyRequests
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func parseKind(s string) (models.Kind, error) {
	switch models.Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", models.KindReading:
		return models.KindReading, nil
	case models.KindEngagement:
		return models.KindEngagement, nil
	}
	return "", fmt.Errorf("%w: %q", services.ErrUnknownKind, s)
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", errBadRequest)
	}
	return nil
}

// maxExactFloat is the largest integer a JSON number holds without rounding.
const maxExactFloat = 1 << 53

// toInt accepts whole base-10 numbers only, as JSON numbers or strings.
func toInt(field string, v any) (int, error) {
	bad := fmt.Errorf("%w: %s must be a whole number", errBadRequest, field)
	switch n := v.(type) {
	case nil, bool:
		return 0, bad
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, bad
		}
		return i, nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > maxExactFloat {
			return 0, bad
		}
		return int(n), nil
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, bad
	}
	return i, nil
}

func (ac *ApiController) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !ac.decode(w, r, &req) {
		return
	}
	unit, err := models.ParseUnit(req.Unit)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	quote, err := ac.service.Quote(req.Book, unit, req.Timeframe)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, r, http.StatusOK, quote)
}

func (ac *ApiController) GetSlip(w http.ResponseWriter, r *http.Request) {
	ac.writeJSON(w, r, http.StatusOK, ac.service.GetSlip(getReader(r)))
}

func (ac *ApiController) DraftCommitment(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !ac.decode(w, r, &req) {
		return
	}
	unit, err := models.ParseUnit(req.Unit)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	c, err := ac.service.DraftCommitment(getReader(r), services.DraftRequest{
		Book:      req.Book,
		Unit:      unit,
		Timeframe: req.Timeframe,
		Wager:     req.Wager,
		Odds:      req.Odds,
	})
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, r, http.StatusCreated, c)
}

func (ac *ApiController) DraftEngagement(w http.ResponseWriter, r *http.Request) {
	var req services.EngagementRequest
	if !ac.decode(w, r, &req) {
		return
	}
	e, err := ac.service.DraftEngagement(getReader(r), req)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, r, http.StatusCreated, e)
}

func (ac *ApiController) RemoveDraft(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if !ac.decode(w, r, &req) {
		return
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	if !ac.service.RemoveDraft(getReader(r), kind, req.BookID) {
		ac.writeError(w, r, fmt.Errorf("%w: no %s draft for book %s", services.ErrNotFound, kind, req.BookID))
		return
	}
	ac.writeJSON(w, r, http.StatusOK, ac.service.GetSlip(getReader(r)))
}

func (ac *ApiController) Confirm(w http.ResponseWriter, r *http.Request) {
	reader := getReader(r)
	receipt, err := ac.service.Confirm(reader)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.logger.Infof(providers.TypePost, "Reader %s confirmed %d commitments, wager %s", reader, len(receipt.Confirmed), receipt.TotalWager)
	ac.writeJSON(w, r, http.StatusOK, receipt)
}

func (ac *ApiController) GetCommitments(w http.ResponseWriter, r *http.Request) {
	reader := getReader(r)
	ac.writeJSON(w, r, http.StatusOK, commitmentsResponse{
		Commitments: ac.service.GetActive(reader),
		Engagements: ac.service.GetEngagements(reader),
	})
}

func (ac *ApiController) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := requireID(id); err != nil {
		ac.writeError(w, r, err)
		return
	}
	days, err := ac.service.GetSchedule(getReader(r), id)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, r, http.StatusOK, days)
}

func (ac *ApiController) RecordSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !ac.decode(w, r, &req) {
		return
	}
	if err := requireID(req.ID); err != nil {
		ac.writeError(w, r, err)
		return
	}
	start, err := toInt("startUnit", req.StartUnit)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	end, err := toInt("endUnit", req.EndUnit)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	reader := getReader(r)
	result, err := ac.service.RecordSession(reader, req.ID, start, end)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	if result.Settled != nil {
		ac.logger.Infof(providers.TypePost, "Reader %s settled %s as %s", reader, req.ID, result.Settled.Outcome)
	}
	ac.writeJSON(w, r, http.StatusOK, result)
}

func (ac *ApiController) RecordEngagement(w http.ResponseWriter, r *http.Request) {
	var req engagementProgressRequest
	if !ac.decode(w, r, &req) {
		return
	}
	if err := requireID(req.ID); err != nil {
		ac.writeError(w, r, err)
		return
	}
	delta := 1
	if req.Delta != nil {
		var err error
		if delta, err = toInt("delta", req.Delta); err != nil {
			ac.writeError(w, r, err)
			return
		}
	}
	reader := getReader(r)
	result, err := ac.service.RecordEngagement(reader, req.ID, models.GoalType(req.Goal), delta)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	if result.Settled != nil {
		ac.logger.Infof(providers.TypePost, "Reader %s settled %s as %s", reader, req.ID, result.Settled.Outcome)
	}
	ac.writeJSON(w, r, http.StatusOK, result)
}

func (ac *ApiController) AdvanceDay(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !ac.decode(w, r, &req) {
		return
	}
	if err := requireID(req.ID); err != nil {
		ac.writeError(w, r, err)
		return
	}
	view, err := ac.service.AdvanceDay(getReader(r), req.ID)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, r, http.StatusOK, view)
}

func (ac *ApiController) Forfeit(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !ac.decode(w, r, &req) {
		return
	}
	if err := requireID(req.ID); err != nil {
		ac.writeError(w, r, err)
		return
	}
	reader := getReader(r)
	settled, err := ac.service.Forfeit(reader, req.ID)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.logger.Infof(providers.TypePost, "Reader %s forfeited %s as %s", reader, req.ID, settled.Outcome)
	ac.writeJSON(w, r, http.StatusOK, settled)
}

func (ac *ApiController) InvalidateBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if !ac.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.BookID) == "" {
		ac.writeError(w, r, fmt.Errorf("%w: bookId is required", errBadRequest))
		return
	}
	ac.service.InvalidateBook(req.BookID)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetSettled(w http.ResponseWriter, r *http.Request) {
	ac.writeJSON(w, r, http.StatusOK, ac.service.GetSettled(getReader(r)))
}

func (ac *ApiController) GetStatus(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := requireID(id); err != nil {
		ac.writeError(w, r, err)
		return
	}
	status, err := ac.service.GetStatus(getReader(r), id)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, r, http.StatusOK, map[string]any{"id": id, "status": status})
}
