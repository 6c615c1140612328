// services/hal/internal/worker/measure_worker_test.go
package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lightcode-go/services/hal/halcore"
)

type fakeAdaptor struct {
	mu         sync.Mutex
	notReadyN  int // Collect returns ErrNotReady this many times
	collectErr error
	sample     halcore.Sample
	triggers   int
	collects   int
}

func (a *fakeAdaptor) ID() string                      { return "fake" }
func (a *fakeAdaptor) Capabilities() []halcore.CapInfo { return nil }

func (a *fakeAdaptor) Trigger(ctx context.Context) (time.Duration, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.triggers++
	return time.Millisecond, nil
}

func (a *fakeAdaptor) Collect(ctx context.Context) (halcore.Sample, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.collects++
	if a.notReadyN > 0 {
		a.notReadyN--
		return nil, halcore.ErrNotReady
	}
	if a.collectErr != nil {
		return nil, a.collectErr
	}
	return a.sample, nil
}

func (a *fakeAdaptor) Control(kind, method string, payload any) (any, error) {
	return nil, halcore.ErrUnsupported
}

func TestMeasureCycleWithRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := make(chan halcore.Result, 4)
	w := New(halcore.WorkerConfig{RetryBackoff: time.Millisecond}, sink)
	w.Start(ctx)

	ad := &fakeAdaptor{
		notReadyN: 2,
		sample:    halcore.Sample{{Kind: "light", TsMs: 1}},
	}
	if !w.Submit(halcore.MeasureReq{ID: "dev0", Adaptor: ad}) {
		t.Fatal("Submit refused")
	}

	select {
	case res := <-sink:
		if res.Err != nil {
			t.Fatalf("result err: %v", res.Err)
		}
		if len(res.Sample) != 1 || res.Sample[0].Kind != "light" {
			t.Fatalf("sample = %+v", res.Sample)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no result")
	}

	ad.mu.Lock()
	defer ad.mu.Unlock()
	if ad.collects != 3 {
		t.Fatalf("collects = %d, want 3 (two not-ready retries)", ad.collects)
	}
}

func TestRetriesExhaustedSurfaceNotReady(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := make(chan halcore.Result, 4)
	w := New(halcore.WorkerConfig{RetryBackoff: time.Millisecond, MaxRetries: 2}, sink)
	w.Start(ctx)

	ad := &fakeAdaptor{notReadyN: 100}
	w.Submit(halcore.MeasureReq{ID: "dev0", Adaptor: ad})

	select {
	case res := <-sink:
		if !errors.Is(res.Err, halcore.ErrNotReady) {
			t.Fatalf("err = %v, want ErrNotReady", res.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no result")
	}
}

func TestCollectErrorPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := make(chan halcore.Result, 4)
	w := New(halcore.WorkerConfig{RetryBackoff: time.Millisecond}, sink)
	w.Start(ctx)

	boom := errors.New("bus fault")
	ad := &fakeAdaptor{collectErr: boom}
	w.Submit(halcore.MeasureReq{ID: "dev0", Adaptor: ad})

	select {
	case res := <-sink:
		if !errors.Is(res.Err, boom) {
			t.Fatalf("err = %v, want %v", res.Err, boom)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no result")
	}
}
