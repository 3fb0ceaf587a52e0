package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LonelyIsle/stunting-detector/internal/prediction"
)

const maxResponseBytes = 1 << 20

var (
	// ErrUnreachable means the predictor produced no response at all.
	ErrUnreachable = errors.New("predictor unreachable")
	// ErrMalformedResponse means the predictor answered with a body we cannot use.
	ErrMalformedResponse = errors.New("malformed predictor response")
)

// ServiceError is an error the predictor reported itself.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("predictor error (http %d): %s", e.StatusCode, e.Message)
}

type PredictorClient struct {
	url    string
	http   *http.Client
	schema *responseSchema
	log    *zap.Logger
}

// NewPredictorClient builds a client for the predictor at url. A zero timeout
// leaves the transport defaults in place.
func NewPredictorClient(url string, timeout time.Duration, log *zap.Logger) (*PredictorClient, error) {
	if url == "" {
		return nil, errors.New("predictor url not set")
	}
	schema, err := newResponseSchema()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PredictorClient{
		url:    url,
		http:   &http.Client{Timeout: timeout},
		schema: schema,
		log:    log,
	}, nil
}

func (c *PredictorClient) URL() string { return c.url }

// Predict sends one request to the predictor. It never retries.
func (c *PredictorClient) Predict(ctx context.Context, in prediction.Request) (prediction.Result, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return prediction.Result{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return prediction.Result{}, fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	log := c.log.With(zap.String("predictor_request_id", reqID))

	res, err := c.http.Do(req)
	if err != nil {
		return prediction.Result{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return prediction.Result{}, fmt.Errorf("%w: read body: %v", ErrMalformedResponse, err)
	}
	log.Debug("predictor responded", zap.Int("status", res.StatusCode), zap.Int("bytes", len(raw)))

	if msg, ok := reportedError(raw); ok {
		return prediction.Result{}, &ServiceError{StatusCode: res.StatusCode, Message: msg}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return prediction.Result{}, &ServiceError{StatusCode: res.StatusCode, Message: res.Status}
	}

	if err := c.schema.validate(raw); err != nil {
		return prediction.Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	var out prediction.Result
	if err := json.Unmarshal(raw, &out); err != nil {
		return prediction.Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}

// reportedError extracts a non-null "error" member from a JSON object body.
func reportedError(raw []byte) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	v, ok := obj["error"]
	if !ok || string(bytes.TrimSpace(v)) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, true
	}
	return string(bytes.TrimSpace(v)), true
}
