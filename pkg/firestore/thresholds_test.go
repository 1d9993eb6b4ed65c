package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cryptopusher/internal/alert"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

const docPrefix = "projects/crypto-analyser/databases/(default)/documents/coins/"

type fakeFirestore struct {
	mu      sync.Mutex
	pages   []string
	patches map[string]Document
	masks   map[string][]string
}

func (f *fakeFirestore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !strings.HasPrefix(r.URL.Path, "/v1/projects/crypto-analyser/databases/(default)/documents/coins") {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":404,"message":"not found","status":"NOT_FOUND"}}`)
		return
	}

	switch r.Method {
	case http.MethodGet:
		page := 0
		if tok := r.URL.Query().Get("pageToken"); tok != "" {
			fmt.Sscanf(tok, "page-%d", &page)
		}
		if page >= len(f.pages) {
			fmt.Fprint(w, `{}`)
			return
		}
		fmt.Fprint(w, f.pages[page])
	case http.MethodPatch:
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		var doc Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.patches[id] = doc
		f.masks[id] = r.URL.Query()["updateMask.fieldPaths"]
		doc.Name = docPrefix + id
		_ = json.NewEncoder(w).Encode(doc)
	}
}

func newFake(pages ...string) *fakeFirestore {
	return &fakeFirestore{pages: pages, patches: map[string]Document{}, masks: map[string][]string{}}
}

func newStore(srv *httptest.Server, collection string) *ThresholdStore {
	client := NewClient(srv.URL, "crypto-analyser", staticToken("ya29"), 5*time.Second)
	store := NewThresholdStore(client, collection, zap.NewNop())
	store.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
	store.newID = func(symbol string) string { return symbol + "_config_test" }
	return store
}

// go test -v --run TestLoadThresholds
func TestLoadThresholds(t *testing.T) {
	fake := newFake(
		`{"documents":[
			{"name":"`+docPrefix+`btc_config_1","fields":{"Moeda":{"stringValue":"BTC"},"Lowest":{"stringValue":"300_000"},"Highest":{"integerValue":"400000"}}},
			{"name":"`+docPrefix+`notes","fields":{"text":{"stringValue":"hello"}}}
		],"nextPageToken":"page-1"}`,
		`{"documents":[
			{"name":"`+docPrefix+`eth_config_1","fields":{"Moeda":{"stringValue":"eth"},"Lowest":{"doubleValue":12000.5}}},
			{"name":"`+docPrefix+`sol_config_1","fields":{"Moeda":{"stringValue":"SOL"},"Lowest":{"stringValue":"cheap"}}}
		]}`,
	)
	srv := httptest.NewServer(fake)
	defer srv.Close()

	set, err := newStore(srv, "coins").Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, alert.ThresholdSet{
		"btc": {Low: alert.Float(300000), High: alert.Float(400000)},
		"eth": {Low: alert.Float(12000.5)},
	}, set)
}

// go test -v --run TestLoadThresholdsEmpty
func TestLoadThresholdsEmpty(t *testing.T) {
	srv := httptest.NewServer(newFake(`{}`))
	defer srv.Close()

	_, err := newStore(srv, "coins").Load(context.Background())
	assert.ErrorIs(t, err, ErrNoThresholds)

	// Missing collection behaves like an empty one
	_, err = newStore(srv, "missing").Load(context.Background())
	assert.ErrorIs(t, err, ErrNoThresholds)
}

// go test -v --run TestSaveThresholds
func TestSaveThresholds(t *testing.T) {
	fake := newFake(`{"documents":[{"name":"` + docPrefix + `btc_config_1","fields":{"Moeda":{"stringValue":"BTC"},"Lowest":{"doubleValue":1}}}]}`)
	srv := httptest.NewServer(fake)
	defer srv.Close()

	err := newStore(srv, "coins").Save(context.Background(), alert.ThresholdSet{
		"btc": {Low: alert.Float(310000), High: alert.Float(420000)},
		"eth": {High: alert.Float(21000)},
	})
	require.NoError(t, err)

	require.Contains(t, fake.patches, "btc_config_1")
	btc := fake.patches["btc_config_1"]
	low, _ := btc.Fields[FieldLow].Number()
	high, _ := btc.Fields[FieldHigh].Number()
	assert.Equal(t, 310000.0, low)
	assert.Equal(t, 420000.0, high)
	assert.Equal(t, []string{FieldSymbol, FieldLow, FieldHigh, FieldLastUpdated}, fake.masks["btc_config_1"])

	require.Contains(t, fake.patches, "eth_config_test")
	eth := fake.patches["eth_config_test"]
	sym, _ := eth.Fields[FieldSymbol].String()
	assert.Equal(t, "ETH", sym)
	_, hasLow := eth.Fields[FieldLow]
	assert.False(t, hasLow)
	assert.Equal(t, "2025-05-01T12:00:00Z", *eth.Fields[FieldLastUpdated].TimestampValue)
}

// go test -v --run TestValueNumber
func TestValueNumber(t *testing.T) {
	cases := []struct {
		v    Value
		want float64
		ok   bool
	}{
		{DoubleValue(1.5), 1.5, true},
		{IntegerValue(42), 42, true},
		{StringValue("300_000"), 300000, true},
		{StringValue("1000"), 1000, true},
		{StringValue("abc"), 0, false},
		{Value{}, 0, false},
	}
	for _, c := range cases {
		got, ok := c.v.Number()
		assert.Equal(t, c.ok, ok)
		assert.Equal(t, c.want, got)
	}
}
