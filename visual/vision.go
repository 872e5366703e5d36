package visual

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Prompts for the two vision-model variants. The review prompt pins the
// model to a parseable two-token convention; anything off-convention is
// treated as not flagged.
var (
	ReviewPrompt = "Review this image for policy violations (nudity, sexual content, violence, harassment via embedded text). " +
		"Reply with exactly 'INAPPROPRIATE: <short reason>' if it violates policy, or exactly 'APPROPRIATE' if it does not."
	TranscribePrompt = "Transcribe any text visible in this image. Reply with only the transcribed text, or an empty reply if there is none."
)

const inappropriateMarker = "INAPPROPRIATE:"

// VisionClient talks to a vision-capable model endpoint that accepts an
// image plus a free-form prompt and returns plain text.
type VisionClient struct {
	Client   http.Client
	Host     string
	ApiToken string
}

func NewVisionClient(host, token string) VisionClient {
	return VisionClient{
		Client:   *RobustHTTPClient(),
		Host:     host,
		ApiToken: token,
	}
}

// ReviewImage runs the differently-prompted secondary pass and returns the
// model's raw text reply.
func (vc *VisionClient) ReviewImage(ctx context.Context, data []byte) (string, error) {
	return vc.promptImage(ctx, data, ReviewPrompt)
}

// TranscribeImage asks the model for any text visible in the image.
func (vc *VisionClient) TranscribeImage(ctx context.Context, data []byte) (string, error) {
	return vc.promptImage(ctx, data, TranscribePrompt)
}

// ParseReview interprets the review convention. Flagged only on an
// unambiguous INAPPROPRIATE reply; any parse ambiguity reads as clean.
func ParseReview(reply string) (reason string, flagged bool) {
	trimmed := strings.TrimSpace(reply)
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, inappropriateMarker) {
		return "", false
	}
	reason = strings.TrimSpace(trimmed[len(inappropriateMarker):])
	if reason == "" {
		reason = "policy violation"
	}
	return reason, true
}

func (vc *VisionClient) promptImage(ctx context.Context, data []byte, prompt string) (string, error) {

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("media", "image")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.WriteField("prompt", prompt); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", vc.Host+"/v1/vision", body)
	if err != nil {
		return "", err
	}

	start := time.Now()
	defer func() {
		visionAPIDuration.Observe(time.Since(start).Seconds())
	}()

	req.Header.Set("Authorization", "Bearer "+vc.ApiToken)
	req.Header.Add("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	res, err := vc.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}
	defer res.Body.Close()

	visionAPICount.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return "", fmt.Errorf("vision request failed statusCode=%d", res.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse vision resp JSON: %w", err)
	}
	return out.Text, nil
}
