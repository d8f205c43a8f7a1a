package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/ports"
)

type recordingService struct {
	mu      sync.Mutex
	seen    map[string][]domain.FieldType
	done    chan struct{}
	failKey string
}

func newRecordingService(expected int) *recordingService {
	return &recordingService{seen: make(map[string][]domain.FieldType), done: make(chan struct{}, expected)}
}

func (s *recordingService) Process(_ context.Context, job ports.CompatJob) error {
	s.mu.Lock()
	s.seen[job.Key] = append(s.seen[job.Key], job.To)
	s.mu.Unlock()
	s.done <- struct{}{}
	if job.Key == s.failKey {
		return errors.New("scan failed")
	}
	return nil
}

func (s *recordingService) Report(key string) (*domain.CompatibilityReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	types, ok := s.seen[key]
	if !ok {
		return nil, false
	}
	return &domain.CompatibilityReport{Key: key, To: types[len(types)-1]}, true
}

func TestDispatcher_PreservesPerKeyOrder(t *testing.T) {
	svc := newRecordingService(6)
	svc.failKey = "b"
	d := NewDispatcher(3, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.CompatJob{Key: "a", To: domain.TypeText})
	d.Enqueue(ports.CompatJob{Key: "b", To: domain.TypeText})
	d.Enqueue(ports.CompatJob{Key: "a", To: domain.TypeNumber})
	d.Enqueue(ports.CompatJob{Key: "b", To: domain.TypeDate})
	d.Enqueue(ports.CompatJob{Key: "a", To: domain.TypeBool})
	d.Enqueue(ports.CompatJob{Key: "c", To: domain.TypeTags})

	for i := 0; i < 6; i++ {
		select {
		case <-svc.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for scans")
		}
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	want := []domain.FieldType{domain.TypeText, domain.TypeNumber, domain.TypeBool}
	for i, ft := range want {
		if svc.seen["a"][i] != ft {
			t.Fatalf("order for a = %v, want %v", svc.seen["a"], want)
		}
	}
	if len(svc.seen["b"]) != 2 {
		t.Fatalf("a failing scan must not stop the worker: %v", svc.seen["b"])
	}
}

func TestDispatcher_ShardIndexStable(t *testing.T) {
	d := NewDispatcher(0, newRecordingService(0), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("workers = %d, want %d", len(d.workers), defaultWorkers)
	}
	for _, k := range []string{"severity", "budget", "root-cause"} {
		i := d.shardIndex(k)
		if i < 0 || i >= len(d.workers) || d.shardIndex(k) != i {
			t.Fatalf("unstable shard for %s", k)
		}
	}
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	d := NewDispatcher(1, newRecordingService(0), zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Enqueue(ports.CompatJob{Key: "k", To: domain.TypeText})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Enqueue blocked on a saturated worker")
	}
}

func TestDispatcher_ReportDelegates(t *testing.T) {
	svc := newRecordingService(1)
	svc.seen["k"] = []domain.FieldType{domain.TypeDate}
	d := NewDispatcher(1, svc, zerolog.Nop())

	r, ok := d.Report("k")
	if !ok || r.To != domain.TypeDate {
		t.Fatalf("report = %+v, %v", r, ok)
	}
}
