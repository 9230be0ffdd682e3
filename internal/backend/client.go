package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

const defaultTimeout = 10 * time.Second

// ClientConfig configures the REST client.
type ClientConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the practice REST API. It implements Backend.
type Client struct {
	base    *url.URL
	token   string
	timeout time.Duration
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("backend: base url is required")
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base:    base,
		token:   cfg.Token,
		timeout: timeout,
		http:    httpClient,
		logger:  logger,
	}, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	code, raw, err := c.send(ctx, op, method, path, query, in)
	if err != nil {
		return err
	}
	if !succeeded(code) {
		return errorFrom(op, code, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// send performs one request and returns the status and raw body. Only
// network failures are errors here.
func (c *Client) send(ctx context.Context, op, method, path string, query url.Values, in any) (int, []byte, error) {
	ref := &url.URL{Path: path}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	target := c.base.ResolveReference(ref)

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: err}
	}

	c.logger.Debug("Backend request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)),
	)
	return resp.StatusCode, raw, nil
}

func succeeded(code int) bool {
	return code >= 200 && code < 300
}

func errorFrom(op string, code int, raw []byte) error {
	var eb ErrorBody
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &eb)
	}
	return decodeError(op, code, eb)
}

// page accepts both a bare JSON array and a paginated {"results": [...]}.
type page[T any] []T

func (p *page[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*p = items
		return nil
	}
	var wrapped struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*p = wrapped.Results
	return nil
}

func idPath(collection string, id int64) string {
	return collection + "/" + strconv.FormatInt(id, 10) + "/"
}

func (c *Client) ListAppointments(ctx context.Context, filter AppointmentFilter) ([]model.Appointment, error) {
	q := url.Values{}
	if !filter.From.IsZero() {
		q.Set("start_date", filter.From.String())
	}
	if !filter.To.IsZero() {
		q.Set("end_date", filter.To.String())
	}
	if filter.PractitionerID != 0 {
		q.Set("practitioner", strconv.FormatInt(filter.PractitionerID, 10))
	}
	if filter.RoomID != 0 {
		q.Set("room", strconv.FormatInt(filter.RoomID, 10))
	}

	var out page[model.Appointment]
	if err := c.do(ctx, "list appointments", http.MethodGet, "appointments/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	var out model.Appointment
	if err := c.do(ctx, "get appointment", http.MethodGet, idPath("appointments", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateAppointment(ctx context.Context, appt model.Appointment) (*model.Appointment, error) {
	var out model.Appointment
	if err := c.do(ctx, "create appointment", http.MethodPost, "appointments/", nil, appt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, id int64, patch AppointmentPatch) (*model.Appointment, error) {
	var out model.Appointment
	if err := c.do(ctx, "update appointment", http.MethodPatch, idPath("appointments", id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAppointment(ctx context.Context, id int64) error {
	return c.do(ctx, "delete appointment", http.MethodDelete, idPath("appointments", id), nil, nil, nil)
}

// SeriesResponse is the create-series payload.
type SeriesResponse struct {
	Success bool `json:"success"`
	model.SeriesResult
}

// SeriesFailure is the create-series payload of a run that stopped part
// way: the error next to what was created before it.
type SeriesFailure struct {
	SeriesResponse
	ErrorBody
}

// CreateSeries returns the partial result together with the error when
// the server stopped the series part way.
func (c *Client) CreateSeries(ctx context.Context, spec model.SeriesSpec) (model.SeriesResult, error) {
	const op = "create series"
	code, raw, err := c.send(ctx, op, http.MethodPost, "appointments/create-series/", nil, spec)
	if err != nil {
		return model.SeriesResult{}, err
	}

	var out SeriesResponse
	if !succeeded(code) {
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &out)
		}
		return out.SeriesResult, errorFrom(op, code, raw)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return model.SeriesResult{}, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return out.SeriesResult, nil
}

func (c *Client) ListAbsences(ctx context.Context, filter AbsenceFilter) ([]model.Absence, error) {
	q := url.Values{}
	if filter.ApprovedOnly {
		q.Set("is_approved", "true")
	}
	if !filter.From.IsZero() {
		q.Set("start_date", filter.From.String())
	}
	if !filter.To.IsZero() {
		q.Set("end_date", filter.To.String())
	}
	if filter.PractitionerID != 0 {
		q.Set("practitioner", strconv.FormatInt(filter.PractitionerID, 10))
	}

	var out page[model.Absence]
	if err := c.do(ctx, "list absences", http.MethodGet, "absences/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAbsence(ctx context.Context, absence model.Absence) (*model.Absence, error) {
	var out model.Absence
	if err := c.do(ctx, "create absence", http.MethodPost, "absences/", nil, absence, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAbsence(ctx context.Context, absence model.Absence) (*model.Absence, error) {
	var out model.Absence
	if err := c.do(ctx, "update absence", http.MethodPut, idPath("absences", absence.ID), nil, absence, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAbsence(ctx context.Context, id int64) error {
	return c.do(ctx, "delete absence", http.MethodDelete, idPath("absences", id), nil, nil, nil)
}

func (c *Client) ListPractitioners(ctx context.Context) ([]model.Practitioner, error) {
	var out page[model.Practitioner]
	if err := c.do(ctx, "list practitioners", http.MethodGet, "practitioners/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListRooms(ctx context.Context) ([]model.Room, error) {
	var out page[model.Room]
	if err := c.do(ctx, "list rooms", http.MethodGet, "rooms/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOpeningHours(ctx context.Context) (model.OpeningHours, error) {
	var out model.Practice
	if err := c.do(ctx, "get practice", http.MethodGet, "practice/instance/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.OpeningHours, nil
}

func (c *Client) UpdateOpeningHours(ctx context.Context, hours model.OpeningHours) error {
	in := struct {
		OpeningHours model.OpeningHours `json:"opening_hours"`
	}{OpeningHours: hours}
	return c.do(ctx, "update practice", http.MethodPut, "practice/instance/", nil, in, nil)
}
