package flow

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marcos020499/booker/shared/models"
	"github.com/marcos020499/booker/shared/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) ListFlights(ctx context.Context) ([]models.Flight, error) {
	return nil, errors.New("catalog offline")
}

func TestDelayedSearcher_ReturnsCatalog(t *testing.T) {
	searcher := NewDelayedSearcher(testCatalog(t), 10*time.Millisecond)

	flights, err := searcher.Search(context.Background(), search.NewCriteria(testNow))

	require.NoError(t, err)
	assert.Len(t, flights, 4)
}

func TestDelayedSearcher_Heartbeats(t *testing.T) {
	var beats int32
	searcher := NewDelayedSearcher(testCatalog(t), 60*time.Millisecond,
		WithHeartbeat(5*time.Millisecond, func(ctx context.Context) {
			atomic.AddInt32(&beats, 1)
		}))

	_, err := searcher.Search(context.Background(), search.NewCriteria(testNow))

	require.NoError(t, err)
	assert.Greater(t, atomic.LoadInt32(&beats), int32(0))
}

func TestDelayedSearcher_Cancelled(t *testing.T) {
	searcher := NewDelayedSearcher(testCatalog(t), time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := searcher.Search(ctx, search.NewCriteria(testNow))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelayedSearcher_SourceError(t *testing.T) {
	searcher := NewDelayedSearcher(failingSource{}, 0)

	_, err := searcher.Search(context.Background(), search.NewCriteria(testNow))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog offline")
}
