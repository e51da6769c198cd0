package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/shop-api/internal/core/domain"
)

type recordingService struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	err    error
	block  chan struct{}
}

func (s *recordingService) Process(_ context.Context, e domain.AuthEvent) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingService) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestDispatcher_PreservesPerAccountOrder(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(4, svc, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	types := []domain.AuthEventType{domain.EventRegistered, domain.EventLoginFailure, domain.EventLoginSuccess, domain.EventLogout}
	for _, typ := range types {
		d.Record(domain.AuthEvent{Type: typ, Email: "alice@x.com"})
	}

	deadline := time.Now().Add(2 * time.Second)
	for svc.count() < len(types) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	d.Wait()

	if svc.count() != len(types) {
		t.Fatalf("expected %d events, got %d", len(types), svc.count())
	}
	for i, typ := range types {
		if svc.events[i].Type != typ {
			t.Fatalf("event %d: expected %s, got %s", i, typ, svc.events[i].Type)
		}
	}
}

func TestDispatcher_DrainsOnShutdown(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(1, svc, zerolog.Nop())

	for i := 0; i < 10; i++ {
		d.Record(domain.AuthEvent{Type: domain.EventLoginSuccess, Email: "bob@x.com"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	if svc.count() != 10 {
		t.Fatalf("expected queued events to be drained, got %d", svc.count())
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(1, svc, zerolog.Nop())

	for i := 0; i < channelBuffer+5; i++ {
		d.Record(domain.AuthEvent{Type: domain.EventLoginFailure, Email: "carol@x.com"})
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected full buffer of %d, got %d", channelBuffer, got)
	}
}

func TestDispatcher_ServiceErrorDoesNotStopWorker(t *testing.T) {
	svc := &recordingService{err: errors.New("mongo down")}
	d := NewDispatcher(1, svc, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Record(domain.AuthEvent{Type: domain.EventLogout, Email: "a@x.com"})
	d.Record(domain.AuthEvent{Type: domain.EventLogout, Email: "a@x.com"})

	deadline := time.Now().Add(2 * time.Second)
	for svc.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	d.Wait()

	if svc.count() != 2 {
		t.Fatalf("worker should keep processing after errors, got %d", svc.count())
	}
}

func TestDispatcher_ShardIndexStable(t *testing.T) {
	d := NewDispatcher(8, &recordingService{}, zerolog.Nop())
	a := d.shardIndex("alice@x.com")
	for i := 0; i < 10; i++ {
		if d.shardIndex("alice@x.com") != a {
			t.Fatalf("shard index must be deterministic")
		}
	}
	if a < 0 || a >= 8 {
		t.Fatalf("shard index out of range: %d", a)
	}
}
