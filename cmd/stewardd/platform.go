package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	cli "github.com/urfave/cli/v2"

	"github.com/stewardbot/steward/platform"
	"github.com/stewardbot/steward/visual"
)

// adapterClient implements platform.Client over HTTP against the bot-shell
// adapter service. The adapter owns the actual chat-platform credentials
// and API quirks; this side only speaks a small JSON surface.
type adapterClient struct {
	client   http.Client
	host     string
	apiToken string
}

func newPlatformClient(cctx *cli.Context) (*adapterClient, error) {
	host := cctx.String("platform-host")
	if host == "" {
		return nil, fmt.Errorf("platform-host is required")
	}
	return &adapterClient{
		client:   *visual.RobustHTTPClient(),
		host:     host,
		apiToken: cctx.String("platform-token"),
	}, nil
}

func (ac *adapterClient) post(ctx context.Context, path string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", ac.host+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+ac.apiToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := ac.client.Do(req)
	if err != nil {
		return fmt.Errorf("platform adapter request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return fmt.Errorf("platform adapter request failed path=%s statusCode=%d", path, res.StatusCode)
	}
	return nil
}

func (ac *adapterClient) SendMessage(ctx context.Context, groupID int64, text string) error {
	return ac.post(ctx, "/v1/sendMessage", map[string]any{"group_id": groupID, "text": text})
}

func (ac *adapterClient) DeleteMessage(ctx context.Context, groupID, messageID int64) error {
	return ac.post(ctx, "/v1/deleteMessage", map[string]any{"group_id": groupID, "message_id": messageID})
}

func (ac *adapterClient) BanMember(ctx context.Context, groupID, userID int64) error {
	return ac.post(ctx, "/v1/banMember", map[string]any{"group_id": groupID, "user_id": userID})
}

func (ac *adapterClient) GetMemberStatus(ctx context.Context, groupID, userID int64) (platform.Role, error) {
	u := fmt.Sprintf("%s/v1/memberStatus?group_id=%d&user_id=%d", ac.host, groupID, userID)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+ac.apiToken)

	res, err := ac.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("platform adapter request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return "", fmt.Errorf("member status request failed statusCode=%d", res.StatusCode)
	}

	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse member status resp JSON: %w", err)
	}
	return platform.Role(out.Status), nil
}

func (ac *adapterClient) DownloadMedia(ctx context.Context, fileRef string) ([]byte, error) {
	u := ac.host + "/v1/media?ref=" + url.QueryEscape(fileRef)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+ac.apiToken)

	res, err := ac.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media download failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("media download failed statusCode=%d", res.StatusCode)
	}
	return io.ReadAll(res.Body)
}
