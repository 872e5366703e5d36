// Package visual holds the HTTP clients for remote image classification:
// the primary policy classifier, the secondary vision-model review pass,
// and the OCR transcription variant. It also carries the crude
// encoded-payload term scan used as a high-recall backstop.
package visual

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/carlmjohnson/versioninfo"
)

// Policy categories submitted with every primary classification request.
var PolicyCategories = []string{
	"nudity",
	"sexual content",
	"violence",
	"harassment via embedded text",
}

// Classification is the primary classifier's verdict for one image.
type Classification struct {
	Flagged    bool     `json:"flagged"`
	Categories []string `json:"categories"`
	Reason     string   `json:"reason"`
}

// Reason summary suitable for a user-facing notice.
func (c *Classification) Summary() string {
	if c.Reason != "" {
		return c.Reason
	}
	return strings.Join(c.Categories, ", ")
}

type ClassifierClient struct {
	Client   http.Client
	Host     string
	ApiToken string
}

func NewClassifierClient(host, token string) ClassifierClient {
	return ClassifierClient{
		Client:   *RobustHTTPClient(),
		Host:     host,
		ApiToken: token,
	}
}

// ClassifyImage submits the image and the fixed policy-category list as a
// multipart form, and parses the structured verdict. Transport and API
// failures come back as errors, distinguishable from a clean not-flagged
// verdict.
func (cc *ClassifierClient) ClassifyImage(ctx context.Context, data []byte) (*Classification, error) {

	slog.Debug("sending image to classifier", "size", len(data))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("media", "image")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.WriteField("categories", strings.Join(PolicyCategories, ",")); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", cc.Host+"/v1/classify", body)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		classifierAPIDuration.Observe(time.Since(start).Seconds())
	}()

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", cc.ApiToken))
	req.Header.Add("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "steward/"+versioninfo.Short())

	res, err := cc.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer res.Body.Close()

	classifierAPICount.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("classifier request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier resp body: %w", err)
	}

	var out Classification
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return nil, fmt.Errorf("failed to parse classifier resp JSON: %w", err)
	}
	return &out, nil
}
