package app

import (
	"context"
	"time"

	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/adapters/queue"
)

type fakeStore struct {
	fetchData []byte
	fetchErr  error

	publishErr     error
	published      bool
	publishBucket  string
	publishKey     string
	publishData    []byte
	publishContent string
}

func (s *fakeStore) Fetch(_ context.Context, _, _ string) ([]byte, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.fetchData, nil
}

func (s *fakeStore) Publish(_ context.Context, bucket, key string, data []byte, contentType string) error {
	if s.publishErr != nil {
		return s.publishErr
	}
	s.published = true
	s.publishBucket = bucket
	s.publishKey = key
	s.publishData = data
	s.publishContent = contentType
	return nil
}

type fakeItem struct {
	body     []byte
	acks     int
	visCalls []time.Duration
}

func (i *fakeItem) Body() []byte { return i.body }

func (i *fakeItem) Acknowledge() error {
	i.acks++
	return nil
}

func (i *fakeItem) SetVisibility(d time.Duration) error {
	i.visCalls = append(i.visCalls, d)
	return nil
}

// fakeSource replays scripted batches; once exhausted it cancels the loop so
// Run returns.
type fakeSource struct {
	batches  [][]queue.WorkItem
	receives int
	cancel   context.CancelFunc
}

func (s *fakeSource) Receive(ctx context.Context, _ int, _, _ time.Duration) ([]queue.WorkItem, error) {
	if s.receives >= len(s.batches) {
		s.cancel()
		return nil, ctx.Err()
	}
	batch := s.batches[s.receives]
	s.receives++
	return batch, nil
}
