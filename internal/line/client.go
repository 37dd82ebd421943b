// Package line integrates with the LINE Messaging API: webhook signature
// verification, replies and pushes, and image content download. It implements
// the messaging and image ports the intake conversation depends on.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resale_support_backend/platform/config"
	"resale_support_backend/platform/logger"
)

const (
	defaultAPIBase  = "https://api.line.me"
	defaultDataBase = "https://api-data.line.me"

	// maxMessageRunes is the hard per-message limit of the Messaging API.
	maxMessageRunes = 5000
	// maxReplyMessages is the per-reply message count limit.
	maxReplyMessages = 5
)

// Client talks to the LINE Messaging API.
type Client struct {
	accessToken string
	apiBase     string
	dataBase    string
	imageDir    string
	http        *http.Client
	log         *logger.Logger
}

// NewClient creates a Messaging API client. Downloaded images are stored
// under a per-user directory inside the OS temp dir.
func NewClient(cfg config.LineConfig, log *logger.Logger) *Client {
	return &Client{
		accessToken: cfg.GetLineChannelAccessToken(),
		apiBase:     defaultAPIBase,
		dataBase:    defaultDataBase,
		imageDir:    filepath.Join(os.TempDir(), "resale_support_images"),
		http:        &http.Client{Timeout: 30 * time.Second},
		log:         log,
	}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// ReplyText answers the inbound event with a single text message.
func (c *Client) ReplyText(ctx context.Context, replyToken, text string) error {
	return c.ReplyMultiple(ctx, replyToken, []string{text})
}

// ReplyMultiple answers with up to five text messages; extras are dropped.
func (c *Client) ReplyMultiple(ctx context.Context, replyToken string, texts []string) error {
	if len(texts) > maxReplyMessages {
		texts = texts[:maxReplyMessages]
	}

	messages := make([]textMessage, 0, len(texts))
	for _, text := range texts {
		messages = append(messages, textMessage{Type: "text", Text: truncate(text)})
	}

	return c.post(ctx, c.apiBase+"/v2/bot/message/reply", replyRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
}

// PushMessage sends a text message to a user without a reply token.
func (c *Client) PushMessage(ctx context.Context, userID, text string) error {
	return c.post(ctx, c.apiBase+"/v2/bot/message/push", pushRequest{
		To:       userID,
		Messages: []textMessage{{Type: "text", Text: truncate(text)}},
	})
}

func (c *Client) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal line payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("line request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("line api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}

// DownloadImage fetches the image content behind a message id and stores it
// as <imageDir>/<userID>/<messageID>.jpg, returning the stored path.
func (c *Client) DownloadImage(ctx context.Context, messageID, userID string) (string, error) {
	url := fmt.Sprintf("%s/v2/bot/message/%s/content", c.dataBase, messageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("line content request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("line content api returned %d", resp.StatusCode)
	}

	userDir := filepath.Join(c.imageDir, userID)
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(userDir, messageID+".jpg")
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// ClearUserImages removes every stored image for the user.
func (c *Client) ClearUserImages(userID string) error {
	userDir := filepath.Join(c.imageDir, userID)
	matches, err := filepath.Glob(filepath.Join(userDir, "*.jpg"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// truncate caps a message at the API limit, marking the cut with an
// ellipsis.
func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageRunes {
		return text
	}
	return string(runes[:maxMessageRunes-3]) + "..."
}
