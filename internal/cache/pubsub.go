// ============================================================================
// cache/pubsub.go - Redis Pub/Sub Wrapper
// ============================================================================
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/credit-program/internal/constants"
	"github.com/aman-zulfiqar/credit-program/internal/models"
	"github.com/aman-zulfiqar/credit-program/internal/storage"
)

type PubSubManager struct {
	client *redis.Client
	log    *logrus.Entry
}

func NewPubSubManager(client *redis.Client, logger *logrus.Logger) *PubSubManager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PubSubManager{
		client: client,
		log:    logger.WithField("component", "pubsub"),
	}
}

// PublishQuote sends q to the global feed and to its pool channel.
func (p *PubSubManager) PublishQuote(ctx context.Context, q *models.PriceQuote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}

	channels := []string{
		constants.PubSubChannelQuotes,
		constants.PubSubChannelPoolPrefix + q.Pool,
	}

	pipe := p.client.Pipeline()
	for _, channel := range channels {
		pipe.Publish(ctx, channel, data)
	}

	_, err = pipe.Exec(ctx)
	return err
}

// PublishSwap sends a submission to the swap feed.
func (p *PubSubManager) PublishSwap(ctx context.Context, s *models.SwapSubmission) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, constants.PubSubChannelSwaps, data).Err()
}

// ErrUnknownChannel is returned for channels that carry no known feed.
var ErrUnknownChannel = errors.New("unknown channel")

// Feed is the payload kind of a pub/sub channel.
type Feed int

const (
	FeedQuotes Feed = iota + 1
	FeedSwaps
)

// ChannelFeed reports what channel carries: the global and per-pool quote
// channels carry quotes, the swap channel carries submissions.
func ChannelFeed(channel string) (Feed, error) {
	switch {
	case channel == constants.PubSubChannelQuotes:
		return FeedQuotes, nil
	case strings.HasPrefix(channel, constants.PubSubChannelPoolPrefix) && len(channel) > len(constants.PubSubChannelPoolPrefix):
		return FeedQuotes, nil
	case channel == constants.PubSubChannelSwaps:
		return FeedSwaps, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
}

// Subscribe routes channel to onQuote or onSwap by its feed. A nil handler
// for the channel's feed is an error.
func (p *PubSubManager) Subscribe(ctx context.Context, channel string, onQuote storage.QuoteHandler, onSwap storage.SwapHandler) error {
	feed, err := ChannelFeed(channel)
	if err != nil {
		return err
	}
	switch {
	case feed == FeedQuotes && onQuote != nil:
		return p.SubscribeQuotes(ctx, channel, onQuote)
	case feed == FeedSwaps && onSwap != nil:
		return p.SubscribeSwaps(ctx, channel, onSwap)
	}
	return fmt.Errorf("no handler for channel %q", channel)
}

// SubscribeQuotes calls handler for every quote published on channel until
// ctx is done.
func (p *PubSubManager) SubscribeQuotes(ctx context.Context, channel string, handler storage.QuoteHandler) error {
	return subscribe[models.PriceQuote](ctx, p, channel, "quote", handler)
}

// SubscribeSwaps calls handler for every submission published on channel
// until ctx is done.
func (p *PubSubManager) SubscribeSwaps(ctx context.Context, channel string, handler storage.SwapHandler) error {
	return subscribe[models.SwapSubmission](ctx, p, channel, "swap", handler)
}

func subscribe[T any](ctx context.Context, p *PubSubManager, channel, kind string, handler func(*T)) error {
	pubsub := p.client.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	p.log.WithField("channel", channel).Info("subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var v T
			if err := json.Unmarshal([]byte(msg.Payload), &v); err != nil {
				p.log.WithError(err).WithField("channel", channel).Warnf("dropping malformed %s", kind)
				continue
			}
			handler(&v)
		}
	}
}
