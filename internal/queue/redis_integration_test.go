//go:build integration

package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"enrolld/internal/queue"
	"enrolld/pkg/testutil/containers"
)

type RedisQueueSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	queue *queue.Redis
}

func TestRedisQueueSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisQueueSuite))
}

func (s *RedisQueueSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.queue = queue.NewRedis(s.redis.Client, "", "")
}

func (s *RedisQueueSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisQueueSuite) TestPublishConsumeRoundTrip() {
	ctx := context.Background()

	s.Require().NoError(s.queue.Publish(ctx, queue.Message{EnrollmentID: "e1"}))
	s.Require().NoError(s.queue.Publish(ctx, queue.Message{EnrollmentID: "e2"}))

	msg, ok, err := s.queue.Consume(ctx, time.Second)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal("e1", msg.EnrollmentID)

	msg, ok, err = s.queue.Consume(ctx, time.Second)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal("e2", msg.EnrollmentID)
}

func (s *RedisQueueSuite) TestConsumeTimesOutOnEmptyQueue() {
	_, ok, err := s.queue.Consume(context.Background(), time.Second)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisQueueSuite) TestEachDeliveryGoesToOneConsumer() {
	ctx := context.Background()

	const n = 10
	for i := 0; i < n; i++ {
		s.Require().NoError(s.queue.Publish(ctx, queue.Message{EnrollmentID: string(rune('a' + i))}))
	}

	seen := make(chan string, n)
	for w := 0; w < 3; w++ {
		go func() {
			for {
				msg, ok, err := s.queue.Consume(ctx, 500*time.Millisecond)
				if err != nil || !ok {
					return
				}
				seen <- msg.EnrollmentID
			}
		}()
	}

	got := make(map[string]int)
	for i := 0; i < n; i++ {
		select {
		case id := <-seen:
			got[id]++
		case <-time.After(5 * time.Second):
			s.FailNow("timed out waiting for deliveries")
		}
	}
	s.Len(got, n)
	for id, count := range got {
		s.Equalf(1, count, "message %s delivered %d times", id, count)
	}
}

func (s *RedisQueueSuite) TestDeadLetterLandsOnSeparateList() {
	ctx := context.Background()

	s.Require().NoError(s.queue.PublishDead(ctx, queue.Message{EnrollmentID: "dead"}))

	// The main queue stays empty.
	_, ok, err := s.queue.Consume(ctx, time.Second)
	s.Require().NoError(err)
	s.False(ok)

	size, err := s.redis.Client.LLen(ctx, queue.DefaultDeadLetterKey).Result()
	s.Require().NoError(err)
	s.EqualValues(1, size)
}
