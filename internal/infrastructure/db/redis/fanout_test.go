package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
	"github.com/obralink/marketplace/internal/core/service"
	redisdb "github.com/obralink/marketplace/internal/infrastructure/db/redis"
	"github.com/obralink/marketplace/internal/infrastructure/realtime"
)

type oneMessageRepo struct {
	msg *domain.Message
}

func (r oneMessageRepo) Insert(context.Context, *domain.Message) error { return nil }

func (r oneMessageRepo) FindByID(_ context.Context, id string) (*domain.Message, error) {
	if id != r.msg.ID {
		return nil, domain.ErrMessageNotFound
	}
	c := *r.msg
	return &c, nil
}

func (r oneMessageRepo) ListByProject(context.Context, string) ([]*domain.Message, error) {
	return []*domain.Message{r.msg}, nil
}

// Two API processes share Redis but each owns a hub; both must deliver.
func TestFeed_EveryInstanceDeliversToItsOwnHub(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := oneMessageRepo{msg: &domain.Message{ID: "m1", ProjectID: "p1", Content: "hola", CreatedAt: time.Now()}}
	ev := domain.MessageEvent{ProjectID: "p1", MessageID: "m1"}

	type instance struct {
		hub  *realtime.Hub
		feed ports.FeedService
	}
	var instances []instance
	for _, id := range []string{"api-a", "api-b"} {
		hub := realtime.NewHub(zerolog.Nop())
		dedup := redisdb.NewDedupChecker(client, id, time.Minute)
		instances = append(instances, instance{hub: hub, feed: service.NewFeedService(repo, dedup, hub, zerolog.Nop())})
	}

	var streams []<-chan *domain.Message
	for _, in := range instances {
		ch, cancel := in.hub.Subscribe("p1")
		t.Cleanup(cancel)
		streams = append(streams, ch)
	}

	for _, in := range instances {
		require.NoError(t, in.feed.Process(context.Background(), ev))
		// A redelivery on the same instance is still dropped.
		require.NoError(t, in.feed.Process(context.Background(), ev))
	}

	for i, ch := range streams {
		assert.Equal(t, 1, len(ch), "instance %d subscriber", i)
	}
}
