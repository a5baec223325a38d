package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/adapters/queue"
	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/fhir"
	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/tabular"
)

func runWorker(t *testing.T, store *fakeStore, batches [][]queue.WorkItem) *fakeSource {
	t.Helper()

	pipeline := NewPipeline(
		store,
		fhir.NewExtractor(zerolog.Nop()),
		tabular.NewWriter(),
		"in-bucket", "out-bucket", t.TempDir(),
		zerolog.Nop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := &fakeSource{batches: batches, cancel: cancel}
	worker := NewWorker(source, pipeline, 10, 120*time.Second, 20*time.Second, zerolog.Nop())

	err := worker.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	return source
}

func TestWorkerAcknowledgesOnSuccess(t *testing.T) {
	store := &fakeStore{fetchData: []byte(sampleBundle)}
	item := &fakeItem{body: notificationFor("a.json")}

	runWorker(t, store, [][]queue.WorkItem{{item}})

	assert.Equal(t, 1, item.acks, "exactly one acknowledge")
	assert.Empty(t, item.visCalls, "no visibility change on success")
}

func TestWorkerReleasesOnFailure(t *testing.T) {
	// fetch step fails: valid notification, unreachable object
	store := &fakeStore{fetchErr: errors.New("object gone")}
	item := &fakeItem{body: notificationFor("a.json")}

	runWorker(t, store, [][]queue.WorkItem{{item}})

	assert.Zero(t, item.acks, "failed item is never deleted")
	require.Len(t, item.visCalls, 1)
	assert.Equal(t, time.Duration(0), item.visCalls[0], "immediate re-eligibility")
}

func TestWorkerIsolatesItemFailures(t *testing.T) {
	store := &fakeStore{fetchData: []byte(sampleBundle)}
	bad := &fakeItem{body: []byte(`garbage`)}
	good := &fakeItem{body: notificationFor("a.json")}

	runWorker(t, store, [][]queue.WorkItem{{bad, good}})

	assert.Zero(t, bad.acks)
	require.Len(t, bad.visCalls, 1)
	assert.Equal(t, 1, good.acks, "failing sibling must not affect this item")
	assert.Empty(t, good.visCalls)
}

func TestWorkerLoopsThroughEmptyBatches(t *testing.T) {
	store := &fakeStore{fetchData: []byte(sampleBundle)}
	item := &fakeItem{body: notificationFor("a.json")}

	// two empty batches before the real one; the loop must keep polling
	source := runWorker(t, store, [][]queue.WorkItem{{}, {}, {item}})

	assert.Equal(t, 3, source.receives)
	assert.Equal(t, 1, item.acks)
}
