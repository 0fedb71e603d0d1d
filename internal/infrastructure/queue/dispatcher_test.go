package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/obralink/marketplace/internal/core/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingService struct {
	mu     sync.Mutex
	byProj map[string][]string
	total  int
}

func (s *recordingService) Process(_ context.Context, ev domain.MessageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byProj == nil {
		s.byProj = make(map[string][]string)
	}
	s.byProj[ev.ProjectID] = append(s.byProj[ev.ProjectID], ev.MessageID)
	s.total++
	if ev.MessageID == "boom" {
		return errors.New("boom")
	}
	return nil
}

func (s *recordingService) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func TestDispatcher_PreservesPerProjectOrder(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(4, svc, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	const perProject = 50
	projects := []string{"p1", "p2", "p3", "p4", "p5"}
	for i := 0; i < perProject; i++ {
		for _, p := range projects {
			d.Enqueue(domain.MessageEvent{ProjectID: p, MessageID: fmt.Sprintf("%03d", i)})
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for svc.count() < perProject*len(projects) {
		if time.Now().After(deadline) {
			t.Fatalf("only %d events processed", svc.count())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	d.Wait()

	for _, p := range projects {
		got := svc.byProj[p]
		for i := 1; i < len(got); i++ {
			if got[i-1] >= got[i] {
				t.Fatalf("project %s out of order at %d: %v", p, i, got)
			}
		}
	}
}

func TestDispatcher_ErrorsDoNotStopWorker(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(1, svc, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Enqueue(domain.MessageEvent{ProjectID: "p", MessageID: "boom"})
	d.Enqueue(domain.MessageEvent{ProjectID: "p", MessageID: "after"})

	deadline := time.Now().Add(2 * time.Second)
	for svc.count() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("worker stopped after an error")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	d.Wait()
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, &recordingService{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	first := d.shardIndex("project-42")
	for i := 0; i < 10; i++ {
		if d.shardIndex("project-42") != first {
			t.Fatalf("shard index changed between calls")
		}
	}
}

type blockingService struct{}

func (blockingService) Process(ctx context.Context, _ domain.MessageEvent) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestDispatcher_EnqueueReturnsAfterStop(t *testing.T) {
	d := NewDispatcher(1, blockingService{}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// One event held by the worker, a full buffer, then one that blocks.
		for i := 0; i < channelBuffer+2; i++ {
			d.Enqueue(domain.MessageEvent{ProjectID: "p", MessageID: fmt.Sprint(i)})
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(d.workers[0]) < channelBuffer {
		if time.Now().After(deadline) {
			t.Fatalf("shard never filled")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue stayed blocked after the dispatcher stopped")
	}
	d.Wait()
}
