package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/obralink/marketplace/internal/api/metrics"
	"github.com/obralink/marketplace/internal/core/domain"
)

const (
	feedChannelPrefix = "feed:messages:"
	feedPattern       = feedChannelPrefix + "*"

	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// FeedChannel returns the pub/sub channel carrying a project's message events.
func FeedChannel(projectID string) string {
	return feedChannelPrefix + projectID
}

// FeedPublisher announces inserted messages on Redis pub/sub.
type FeedPublisher struct {
	client *redis.Client
}

func NewFeedPublisher(client *redis.Client) *FeedPublisher {
	return &FeedPublisher{client: client}
}

func (p *FeedPublisher) Publish(ctx context.Context, ev domain.MessageEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode feed event: %w", err)
	}
	if err := p.client.Publish(ctx, FeedChannel(ev.ProjectID), payload).Err(); err != nil {
		return fmt.Errorf("publish feed event: %w", err)
	}
	return nil
}

// FeedListener pattern-subscribes to every project channel and hands decoded
// events to a sink. A dropped subscription is re-established with
// exponential backoff.
type FeedListener struct {
	client *redis.Client
	sink   func(domain.MessageEvent)
	log    zerolog.Logger
}

func NewFeedListener(client *redis.Client, sink func(domain.MessageEvent), log zerolog.Logger) *FeedListener {
	return &FeedListener{client: client, sink: sink, log: log}
}

// Run blocks until ctx is cancelled.
func (l *FeedListener) Run(ctx context.Context) {
	backoff := minBackoff
	for {
		delivered, err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		if delivered {
			backoff = minBackoff
		}
		metrics.FeedReconnectsTotal.Inc()
		l.log.Warn().Err(err).Dur("backoff", backoff).Msg("feed subscription lost, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)
	}
}

// listen runs a single subscription until it fails. It reports whether the
// subscription was confirmed, which resets the backoff.
func (l *FeedListener) listen(ctx context.Context) (bool, error) {
	ps := l.client.PSubscribe(ctx, feedPattern)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return false, fmt.Errorf("psubscribe: %w", err)
	}
	l.log.Info().Str("pattern", feedPattern).Msg("feed listener subscribed")

	for {
		msg, err := ps.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return true, err
			}
			return true, fmt.Errorf("receive: %w", err)
		}

		var ev domain.MessageEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			l.log.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed feed event")
			continue
		}
		if ev.ProjectID == "" {
			ev.ProjectID = strings.TrimPrefix(msg.Channel, feedChannelPrefix)
		}
		l.sink(ev)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
