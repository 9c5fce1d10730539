// Package classifier is the gateway to the hosted image-classification model.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

// Detection thresholds sent with every request, in percent.
const (
	requestConfidence = 40
	requestOverlap    = 30
)

var ErrNotConfigured = errors.New("classifier is not configured")

// Prediction is the normalized answer for one image.
type Prediction struct {
	Label      string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

type Classifier interface {
	Classify(ctx context.Context, imageURL string) (Prediction, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	ModelID string
	Timeout time.Duration
}

// RoboflowClient calls the hosted inference endpoint, passing the image by URL.
type RoboflowClient struct {
	cfg  Config
	http *http.Client
}

func NewRoboflowClient(cfg Config) *RoboflowClient {
	return &RoboflowClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type inferenceResponse struct {
	Predictions []struct {
		Class      string  `json:"class"`
		Confidence float64 `json:"confidence"`
	} `json:"predictions"`
}

// Classify returns the highest-confidence detection, or the nothing-detected
// label with zero confidence when the model reports none.
func (c *RoboflowClient) Classify(ctx context.Context, imageURL string) (p Prediction, err error) {
	if c.cfg.APIKey == "" || c.cfg.ModelID == "" {
		return Prediction{}, ErrNotConfigured
	}

	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "classifier", "classify", attribute.String("model.id", c.cfg.ModelID))
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		observability.ObserveClassifier(result, start)
		observability.EndSpan(span, err)
	}()

	q := url.Values{}
	q.Set("api_key", c.cfg.APIKey)
	q.Set("confidence", fmt.Sprint(requestConfidence))
	q.Set("overlap", fmt.Sprint(requestOverlap))
	q.Set("image", imageURL)

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.Trim(c.cfg.ModelID, "/") + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return Prediction{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Prediction{}, fmt.Errorf("inference request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Prediction{}, fmt.Errorf("decode inference response: %w", err)
	}

	p = Prediction{Label: common.NothingDetectedLabel}
	for i, d := range out.Predictions {
		if i == 0 || d.Confidence > p.Confidence {
			p = Prediction{Label: d.Class, Confidence: d.Confidence}
		}
	}

	return p, nil
}
