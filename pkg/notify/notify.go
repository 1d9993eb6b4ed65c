package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Message is one outbound notification burst, shared by every sink.
type Message struct {
	ID        snowflake.ID      `json:"id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Encode serializes the message for broker sinks.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Service delivers a message through one channel.
type Service interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// MultiNotifier fans a message out to every service concurrently. A failing
// service doesn't keep the others from delivering.
type MultiNotifier struct {
	services []Service
}

func NewMultiNotifier(services ...Service) *MultiNotifier {
	return &MultiNotifier{services: services}
}

func (m *MultiNotifier) Name() string { return "multi" }

// Len returns how many services are attached.
func (m *MultiNotifier) Len() int { return len(m.services) }

// Send returns the joined errors of the services that failed.
func (m *MultiNotifier) Send(ctx context.Context, msg Message) error {
	var wg sync.WaitGroup
	errChan := make(chan error, len(m.services))

	for _, service := range m.services {
		wg.Add(1)
		go func(s Service) {
			defer wg.Done()
			if err := s.Send(ctx, msg); err != nil {
				errChan <- fmt.Errorf("%s: %w", s.Name(), err)
			}
		}(service)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
