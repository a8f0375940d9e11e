package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

func TestEventQueue_FIFO(t *testing.T) {
	q := newEventQueue()

	q.Enqueue(ir.Tick{Time: 1})
	q.Enqueue(ir.KeyPress{Lane: ir.LaneRed})
	q.Enqueue(ir.Tick{Time: 1})

	e1, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, ir.Tick{Time: 1}, e1)

	e2, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, ir.KeyPress{Lane: ir.LaneRed}, e2, "arrival order wins over timestamps")

	e3, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, ir.Tick{Time: 1}, e3)

	_, ok = q.TryDequeue()
	assert.False(t, ok)
}

func TestEventQueue_WaitSignals(t *testing.T) {
	q := newEventQueue()

	go func() {
		time.Sleep(5 * time.Millisecond)
		q.Enqueue(ir.End{})
	}()

	select {
	case <-q.Wait():
		assert.Equal(t, 1, q.Len())
	case <-time.After(time.Second):
		t.Fatal("no signal after enqueue")
	}
}

func TestEventQueue_Close(t *testing.T) {
	q := newEventQueue()
	q.Enqueue(ir.End{})
	q.Close()
	q.Close() // second close is a no-op

	assert.True(t, q.Closed())
	assert.False(t, q.Enqueue(ir.Tick{Time: 2}), "enqueue after close fails")

	_, ok := q.TryDequeue()
	assert.True(t, ok, "queued events survive close")

	select {
	case <-q.Wait():
	default:
		t.Fatal("closed queue must wake waiters")
	}
}

func TestEventQueue_ConcurrentEnqueue(t *testing.T) {
	q := newEventQueue()
	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(ir.Tick{Time: int64(i)})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, q.Len())
}
