package ratings

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"
)

type fakeStore struct {
	mu       sync.Mutex
	ratings  map[string][]int
	averages map[string]*float64
	writes   int
	exists   map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ratings:  make(map[string][]int),
		averages: make(map[string]*float64),
		exists:   make(map[string]bool),
	}
}

func (f *fakeStore) RatingsForMovie(ctx context.Context, movieID string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.ratings[movieID]...), nil
}

func (f *fakeStore) SetAverageRating(ctx context.Context, movieID string, average *float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if !f.exists[movieID] {
		return false, nil
	}
	if average == nil {
		f.averages[movieID] = nil
	} else {
		v := *average
		f.averages[movieID] = &v
	}
	return true, nil
}

func (f *fakeStore) average(movieID string) (*float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	avg, ok := f.averages[movieID]
	return avg, ok
}

func newAggregator(store *fakeStore) *Aggregator {
	return New(store, store, 16, log.New(io.Discard, "", 0))
}

func TestRecompute_MeanRoundedToTwoPlaces(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"single", []int{4}, 4.0},
		{"half", []int{1, 2}, 1.5},
		{"repeating third", []int{2, 3, 3}, 2.67},
		{"thirds down", []int{1, 1, 2}, 1.33},
		{"all fives", []int{5, 5, 5, 5}, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.exists["m1"] = true
			store.ratings["m1"] = tt.ratings

			if err := newAggregator(store).Recompute(context.Background(), "m1"); err != nil {
				t.Fatalf("Recompute: %v", err)
			}
			avg, ok := store.average("m1")
			if !ok || avg == nil {
				t.Fatalf("no average written")
			}
			if *avg != tt.want {
				t.Fatalf("average = %v, want %v", *avg, tt.want)
			}
		})
	}
}

func TestRecompute_EmptySetClearsAverage(t *testing.T) {
	store := newFakeStore()
	store.exists["m1"] = true
	prev := 4.5
	store.averages["m1"] = &prev

	if err := newAggregator(store).Recompute(context.Background(), "m1"); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	avg, ok := store.average("m1")
	if !ok {
		t.Fatalf("average never written")
	}
	if avg != nil {
		t.Fatalf("average = %v, want nil for empty review set", *avg)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	store := newFakeStore()
	store.exists["m1"] = true
	store.ratings["m1"] = []int{3, 4}

	agg := newAggregator(store)
	if err := agg.Recompute(context.Background(), "m1"); err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	first, _ := store.average("m1")

	if err := agg.Recompute(context.Background(), "m1"); err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	second, _ := store.average("m1")

	if *first != *second || *second != 3.5 {
		t.Fatalf("averages differ across identical recomputes: %v vs %v", *first, *second)
	}
	if store.writes != 2 {
		t.Fatalf("writes = %d, want one per recompute", store.writes)
	}
}

func TestRecompute_MissingMovieIsNoOp(t *testing.T) {
	store := newFakeStore()
	store.ratings["gone"] = []int{5}

	if err := newAggregator(store).Recompute(context.Background(), "gone"); err != nil {
		t.Fatalf("missing movie should not error: %v", err)
	}
	if _, ok := store.average("gone"); ok {
		t.Fatalf("no average should be stored for a vanished movie")
	}
}

func TestWorker_DrainsTriggers(t *testing.T) {
	store := newFakeStore()
	store.exists["m1"] = true
	store.ratings["m1"] = []int{2, 4}

	agg := newAggregator(store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		agg.Run(ctx)
		close(done)
	}()

	agg.OnReviewChanged("m1")
	agg.OnReviewChanged("m1")

	deadline := time.After(2 * time.Second)
	for {
		if avg, ok := store.average("m1"); ok && avg != nil && *avg == 3.0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("worker never recomputed average")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop on cancel")
	}
}

func TestOnReviewChanged_FullQueueDoesNotBlock(t *testing.T) {
	store := newFakeStore()
	agg := New(store, store, 1, log.New(io.Discard, "", 0))

	// No worker running; second trigger must drop rather than block.
	doneCh := make(chan struct{})
	go func() {
		agg.OnReviewChanged("m1")
		agg.OnReviewChanged("m1")
		close(doneCh)
	}()

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatalf("OnReviewChanged blocked on a full queue")
	}
}
