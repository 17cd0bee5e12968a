package main

import (
	"context"
	"errors"
	"sync"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
	ResumePublish(orderingKey string)
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// cachedPublishers keeps one Pub/Sub publisher per topic; each owns batching goroutines.
func cachedPublishers(client pubSubClient, ordered bool) publisherFactory {
	var mu sync.Mutex
	cache := make(map[string]publisher)
	return func(topic string) publisher {
		mu.Lock()
		defer mu.Unlock()
		if pub, ok := cache[topic]; ok {
			return pub
		}
		handle := client.Publisher(topic)
		if handle == nil {
			return nil
		}
		handle.EnableMessageOrdering = ordered
		pub := &gcpPublisher{handle: handle}
		cache[topic] = pub
		return pub
	}
}

type gcpPublisher struct {
	handle *gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.handle == nil {
		return nil
	}
	return gcpPublishResult{result: p.handle.Publish(ctx, msg)}
}

func (p *gcpPublisher) ResumePublish(orderingKey string) {
	if p == nil || p.handle == nil {
		return
	}
	p.handle.ResumePublish(orderingKey)
}

type gcpPublishResult struct {
	result *gcppubsub.PublishResult
}

func (r gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r.result == nil {
		return "", errors.New("publish result is nil")
	}
	return r.result.Get(ctx)
}
