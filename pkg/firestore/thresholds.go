package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptopusher/internal/alert"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoThresholds means the collection holds no usable threshold document.
var ErrNoThresholds = alert.ErrNoThresholds

// Field names of a threshold document.
const (
	FieldSymbol      = "Moeda"
	FieldLow         = "Lowest"
	FieldHigh        = "Highest"
	FieldLastUpdated = "last_updated"
)

// ThresholdStore keeps one document per symbol in a collection:
// {Moeda: "BTC", Lowest: 300000, Highest: 400000}.
type ThresholdStore struct {
	client     *Client
	collection string
	logger     *zap.Logger
	now        func() time.Time
	newID      func(symbol string) string
}

func NewThresholdStore(client *Client, collection string, logger *zap.Logger) *ThresholdStore {
	return &ThresholdStore{
		client:     client,
		collection: collection,
		logger:     logger,
		now:        time.Now,
		newID: func(symbol string) string {
			return symbol + "_config_" + uuid.NewString()
		},
	}
}

// Load reads every document of the collection. Documents without a symbol or
// without any numeric threshold are skipped; when several documents name the
// same symbol the last one listed wins.
func (s *ThresholdStore) Load(ctx context.Context) (alert.ThresholdSet, error) {
	docs, err := s.client.ListDocuments(ctx, s.collection)
	if err != nil {
		return nil, err
	}

	set := make(alert.ThresholdSet)
	for _, doc := range docs {
		symbol, th, ok := decodeThresholds(doc)
		if !ok {
			s.logger.Debug("skipping document", zap.String("doc", doc.ID()))
			continue
		}
		if _, dup := set[symbol]; dup {
			s.logger.Warn("duplicate threshold document", zap.String("symbol", symbol), zap.String("doc", doc.ID()))
		}
		set[symbol] = th
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("collection %q: %w", s.collection, ErrNoThresholds)
	}
	return set, nil
}

// Save writes each symbol of set into its existing document, or into a new
// "<symbol>_config_<uuid>" document when none exists yet.
func (s *ThresholdStore) Save(ctx context.Context, set alert.ThresholdSet) error {
	docs, err := s.client.ListDocuments(ctx, s.collection)
	if err != nil {
		return err
	}

	existing := make(map[string]string, len(docs))
	for _, doc := range docs {
		if sym, ok := doc.Fields[FieldSymbol].String(); ok {
			existing[strings.ToLower(sym)] = doc.ID()
		}
	}

	mask := []string{FieldSymbol, FieldLow, FieldHigh, FieldLastUpdated}
	var errs []error
	for _, symbol := range set.Symbols() {
		id, ok := existing[symbol]
		if !ok {
			id = s.newID(symbol)
		}

		if _, err := s.client.PatchDocument(ctx, s.collection, id, encodeThresholds(symbol, set[symbol], s.now()), mask); err != nil {
			errs = append(errs, err)
			continue
		}
		s.logger.Info("thresholds saved", zap.String("symbol", symbol), zap.String("doc", id))
	}
	return errors.Join(errs...)
}

func decodeThresholds(doc Document) (string, alert.Thresholds, bool) {
	symbol, ok := doc.Fields[FieldSymbol].String()
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	if !ok || symbol == "" {
		return "", alert.Thresholds{}, false
	}

	var th alert.Thresholds
	if v, ok := doc.Fields[FieldLow].Number(); ok {
		th.Low = alert.Float(v)
	}
	if v, ok := doc.Fields[FieldHigh].Number(); ok {
		th.High = alert.Float(v)
	}
	if th.IsEmpty() {
		return "", alert.Thresholds{}, false
	}
	return symbol, th, true
}

func encodeThresholds(symbol string, th alert.Thresholds, now time.Time) map[string]Value {
	fields := map[string]Value{
		FieldSymbol:      StringValue(strings.ToUpper(symbol)),
		FieldLastUpdated: TimestampValue(now),
	}
	if th.Low != nil {
		fields[FieldLow] = DoubleValue(*th.Low)
	}
	if th.High != nil {
		fields[FieldHigh] = DoubleValue(*th.High)
	}
	return fields
}
