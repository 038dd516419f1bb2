package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/swdee/go-actiondetect"
	"gocv.io/x/gocv"
)

// HTTPDetector implements actiondetect.Detector by posting frames to a
// Model inference service
type HTTPDetector struct {
	url        string
	weight     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// predictResponse is the body returned by the inference service
type predictResponse struct {
	Outputs []actiondetect.RawOutput `json:"outputs"`
}

// NewHTTPDetector creates a client for the inference service predict
// endpoint at url.  weight names the Model artifact the service should run.
func NewHTTPDetector(url, weight string, timeout time.Duration, logger *logrus.Logger) *HTTPDetector {
	return &HTTPDetector{
		url:    url,
		weight: weight,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Predict sends the frames as JPEG images in one request and returns one
// RawOutput per frame
func (c *HTTPDetector) Predict(ctx context.Context, frames []gocv.Mat, classes []int) ([]actiondetect.RawOutput, error) {

	body, contentType, err := c.encode(frames, classes)

	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)

	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)

	c.logger.WithFields(logrus.Fields{
		"frames":  len(frames),
		"classes": classes,
	}).Debug("sending predict request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)

	if err != nil {
		return nil, fmt.Errorf("error sending predict request: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("inference service returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result predictResponse

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error decoding predict response: %w", err)
	}

	if len(result.Outputs) != len(frames) {
		return nil, fmt.Errorf("inference service returned %d outputs for %d frames",
			len(result.Outputs), len(frames))
	}

	c.logger.WithFields(logrus.Fields{
		"frames":   len(frames),
		"duration": time.Since(start),
	}).Debug("predict request complete")

	return result.Outputs, nil
}

// encode builds the multipart request body holding the frames and class ids
func (c *HTTPDetector) encode(frames []gocv.Mat, classes []int) (io.Reader, string, error) {

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for i, frame := range frames {

		buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)

		if err != nil {
			return nil, "", fmt.Errorf("error encoding frame %d: %w", i, err)
		}

		part, err := writer.CreateFormFile("frames", fmt.Sprintf("frame%04d.jpg", i))

		if err != nil {
			buf.Close()
			return nil, "", fmt.Errorf("error creating form file for frame %d: %w", i, err)
		}

		_, err = part.Write(buf.GetBytes())
		buf.Close()

		if err != nil {
			return nil, "", fmt.Errorf("error writing frame %d: %w", i, err)
		}
	}

	ids := make([]string, len(classes))

	for i, id := range classes {
		ids[i] = strconv.Itoa(id)
	}

	if err := writer.WriteField("classes", strings.Join(ids, ",")); err != nil {
		return nil, "", fmt.Errorf("error writing classes: %w", err)
	}

	if c.weight != "" {
		if err := writer.WriteField("weight", c.weight); err != nil {
			return nil, "", fmt.Errorf("error writing weight: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("error closing multipart writer: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}

// CheckHealth checks the inference service is reachable.  The health
// endpoint is /health next to the predict endpoint.
func (c *HTTPDetector) CheckHealth(ctx context.Context) error {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL(c.url), nil)

	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)

	if err != nil {
		return fmt.Errorf("inference service unreachable: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy: %d", resp.StatusCode)
	}

	return nil
}

// healthURL replaces the last path element of the predict url with health
func healthURL(predictURL string) string {

	if i := strings.LastIndex(predictURL, "/"); i > len("https://") {
		return predictURL[:i] + "/health"
	}

	return strings.TrimSuffix(predictURL, "/") + "/health"
}
