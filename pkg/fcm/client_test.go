package fcm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken struct {
	token       string
	invalidated int
}

func (s *staticToken) Token(context.Context) (string, error) { return s.token, nil }
func (s *staticToken) Invalidate()                            { s.invalidated++ }

// go test -v --run TestSendToTopic
func TestSendToTopic(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/projects/crypto-analyser/messages:send", r.URL.Path)
		assert.Equal(t, "Bearer ya29.abc", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"name":"projects/crypto-analyser/messages/42"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "crypto-analyser", &staticToken{token: "ya29.abc"}, 5*time.Second)
	name, err := client.SendToTopic(context.Background(), "crypto_alerts", "CRYPTO ANALYSER",
		"BTC: 410.000,00 (HIGH)", map[string]string{"btc_price": "410000", "btc_status": "HIGH"})
	require.NoError(t, err)
	assert.Equal(t, "projects/crypto-analyser/messages/42", name)

	assert.Equal(t, "crypto_alerts", got.Message.Topic)
	assert.Empty(t, got.Message.Token)
	assert.Equal(t, "BTC: 410.000,00 (HIGH)", got.Message.Notification.Body)
	assert.Equal(t, "HIGH", got.Message.Data["btc_status"])
	assert.Equal(t, "high", got.Message.Android.Priority)
	assert.Equal(t, "crypto_alerts", got.Message.Android.Notification.ChannelID)
	assert.Equal(t, "#FF6600", got.Message.Android.Notification.Color)
}

// go test -v --run TestSendToToken
func TestSendToToken(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"name":"projects/p/messages/1"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "p", &staticToken{token: "t"}, 5*time.Second)
	_, err := client.SendToToken(context.Background(), "device-token", "hi", "there", nil)
	require.NoError(t, err)

	assert.Equal(t, "device-token", got.Message.Token)
	assert.Equal(t, "FLUTTER_NOTIFICATION_CLICK", got.Message.Android.Notification.ClickAction)

	_, err = client.SendToToken(context.Background(), "", "hi", "there", nil)
	assert.Error(t, err)
}

// go test -v --run TestSendErrorInvalidatesToken
func TestSendErrorInvalidatesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":401,"message":"Request had invalid authentication credentials.","status":"UNAUTHENTICATED"}}`)
	}))
	defer srv.Close()

	tokens := &staticToken{token: "expired"}
	client := NewClient(srv.URL, "p", tokens, 5*time.Second)
	_, err := client.SendToTopic(context.Background(), "crypto_alerts", "t", "b", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", apiErr.Status)
	assert.Equal(t, 1, tokens.invalidated)
}
