package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingService struct {
	name string
	err  error

	mu   sync.Mutex
	sent []Message
}

func (r *recordingService) Name() string { return r.name }

func (r *recordingService) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

type fakeTopicSender struct {
	topic, title, body string
	data               map[string]string
}

func (f *fakeTopicSender) SendToTopic(_ context.Context, topic, title, body string, data map[string]string) (string, error) {
	f.topic, f.title, f.body, f.data = topic, title, body, data
	return "projects/p/messages/1", nil
}

func testMessage(t *testing.T) Message {
	t.Helper()
	gen, err := NewIDGenerator(1)
	require.NoError(t, err)
	return Message{
		ID:        gen.Next(),
		Title:     "CRYPTO ANALYSER",
		Body:      "BTC: 295.000,00 (LOW)",
		Data:      map[string]string{"btc_price": "295000", "btc_status": "LOW"},
		CreatedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// go test -v --run TestMultiNotifierFanOut
func TestMultiNotifierFanOut(t *testing.T) {
	ok := &recordingService{name: "ok"}
	broken := &recordingService{name: "broken", err: errors.New("connection refused")}
	multi := NewMultiNotifier(ok, broken, NewLogNotifier(zap.NewNop()))

	msg := testMessage(t)
	err := multi.Send(context.Background(), msg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: connection refused")
	assert.Len(t, ok.sent, 1)
	assert.Len(t, broken.sent, 1)
	assert.Equal(t, msg.ID, ok.sent[0].ID)
	assert.Equal(t, 3, multi.Len())
}

// go test -v --run TestMultiNotifierEmpty
func TestMultiNotifierEmpty(t *testing.T) {
	assert.NoError(t, NewMultiNotifier().Send(context.Background(), Message{}))
}

// go test -v --run TestFCMNotifier
func TestFCMNotifier(t *testing.T) {
	sender := &fakeTopicSender{}
	n := NewFCMNotifier(sender, "crypto_alerts", zap.NewNop())

	msg := testMessage(t)
	require.NoError(t, n.Send(context.Background(), msg))

	assert.Equal(t, "crypto_alerts", sender.topic)
	assert.Equal(t, msg.Body, sender.body)
	assert.Equal(t, "LOW", sender.data["btc_status"])
}

// go test -v --run TestMessageEncode
func TestMessageEncode(t *testing.T) {
	msg := testMessage(t)
	raw, err := msg.Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	// snowflake ids travel as strings so JS consumers keep full precision
	assert.Equal(t, msg.ID.String(), decoded["id"])
	assert.Equal(t, "CRYPTO ANALYSER", decoded["title"])
}

// go test -v --run TestIDGeneratorOrdered
func TestIDGeneratorOrdered(t *testing.T) {
	gen, err := NewIDGenerator(7)
	require.NoError(t, err)

	a, b := gen.Next(), gen.Next()
	assert.Less(t, a.Int64(), b.Int64())
	assert.EqualValues(t, 7, a.Node())

	_, err = NewIDGenerator(5000)
	assert.Error(t, err)
}
