package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL   = "https://fcm.googleapis.com"
	DefaultChannelID = "crypto_alerts"
)

// TokenProvider supplies OAuth2 bearer tokens.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type invalidator interface {
	Invalidate()
}

// Client sends push messages through the FCM HTTP v1 API.
type Client struct {
	endpoint   string
	tokens     TokenProvider
	httpClient *http.Client
}

func NewClient(baseURL, projectID string, tokens TokenProvider, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + "/v1/projects/" + projectID + "/messages:send",
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// TopicMessage builds the alert message broadcast to a topic.
func TopicMessage(topic, title, body string, data map[string]string) Message {
	return Message{
		Topic:        topic,
		Notification: &Notification{Title: title, Body: body},
		Data:         data,
		Android: &AndroidConfig{
			Priority: "high",
			Notification: &AndroidNotification{
				Sound:     "default",
				Icon:      "ic_notification",
				Color:     "#FF6600",
				ChannelID: DefaultChannelID,
			},
		},
	}
}

// TokenMessage builds a message addressed to a single device.
func TokenMessage(token, title, body string, data map[string]string) Message {
	return Message{
		Token:        token,
		Notification: &Notification{Title: title, Body: body},
		Data:         data,
		Android: &AndroidConfig{
			Priority: "high",
			Notification: &AndroidNotification{
				Sound:       "default",
				ClickAction: "FLUTTER_NOTIFICATION_CLICK",
			},
		},
	}
}

// SendToTopic broadcasts to every device subscribed to topic and returns the message name.
func (c *Client) SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) (string, error) {
	if topic == "" {
		return "", errors.New("fcm: empty topic")
	}
	return c.Send(ctx, TopicMessage(topic, title, body, data))
}

// SendToToken sends to one registration token and returns the message name.
func (c *Client) SendToToken(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	if token == "" {
		return "", errors.New("fcm: empty token")
	}
	return c.Send(ctx, TokenMessage(token, title, body, data))
}

// Send posts msg to messages:send.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	payload, err := json.Marshal(sendRequest{Message: msg})
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}

	accessToken, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			if inv, ok := c.tokens.(invalidator); ok {
				inv.Invalidate()
			}
		}
		return "", decodeError(resp)
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.Name, nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var envelope struct {
		Error APIError `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		envelope.Error.StatusCode = resp.StatusCode
		return &envelope.Error
	}
	return fmt.Errorf("fcm status %d: %s", resp.StatusCode, body)
}
