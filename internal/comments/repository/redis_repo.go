package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alightgram/alightgram-backend/internal/comments/domain"
	"github.com/alightgram/alightgram-backend/internal/live"
	"github.com/alightgram/alightgram-backend/internal/logging"
	"github.com/alightgram/alightgram-backend/internal/validate"
)

const (
	threadKeyPrefix     = "project_comments:"        // Sorted set of comments scored by timestamp: project_comments:{project_id}
	threadChannelPrefix = "project_comments:events:" // Pub/Sub channel for thread changes: project_comments:events:{project_id}
)

var ErrListenerClosed = errors.New("comment listener closed")

// RedisRepository stores comment threads in Redis sorted sets and announces every write on
// the thread's Pub/Sub channel.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// Add appends c to the thread of projectID and notifies listeners.
func (r *RedisRepository) Add(ctx context.Context, projectID string, c *domain.Comment) error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal comment: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, r.threadKey(projectID), redis.Z{Score: float64(c.Timestamp), Member: data})
	pipe.Publish(ctx, r.threadChannel(projectID), c.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

// List returns the thread of projectID ordered by timestamp ascending. Entries that do not
// decode to a valid comment are skipped.
func (r *RedisRepository) List(ctx context.Context, projectID string) ([]domain.Comment, error) {
	members, err := r.client.ZRange(ctx, r.threadKey(projectID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	out := make([]domain.Comment, 0, len(members))
	for _, m := range members {
		var c domain.Comment
		if err := json.Unmarshal([]byte(m), &c); err != nil {
			logging.FromContext(ctx).Warn("dropping undecodable comment", zap.String("project_id", projectID), zap.Error(err))
			continue
		}
		if err := validate.Struct(&c); err != nil {
			logging.FromContext(ctx).Warn("dropping malformed comment", zap.String("project_id", projectID), zap.Error(err))
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Listen subscribes to the thread of projectID. The first Next returns the current thread,
// each later one the thread after the next change.
func (r *RedisRepository) Listen(ctx context.Context, projectID string) (live.Listener[[]domain.Comment], error) {
	ps := r.client.Subscribe(ctx, r.threadChannel(projectID))
	// wait for the subscription so no write between here and the first List is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to comments: %w", err)
	}
	return &threadListener{
		ctx:       ctx,
		repo:      r,
		projectID: projectID,
		ps:        ps,
		msgs:      ps.Channel(),
		pending:   true,
	}, nil
}

func (r *RedisRepository) threadKey(projectID string) string {
	return threadKeyPrefix + projectID
}

func (r *RedisRepository) threadChannel(projectID string) string {
	return threadChannelPrefix + projectID
}

type threadListener struct {
	ctx       context.Context
	repo      *RedisRepository
	projectID string
	ps        *redis.PubSub
	msgs      <-chan *redis.Message
	pending   bool
}

func (l *threadListener) Next() ([]domain.Comment, error) {
	if l.pending {
		l.pending = false
		return l.repo.List(l.ctx, l.projectID)
	}
	select {
	case <-l.ctx.Done():
		return nil, l.ctx.Err()
	case _, ok := <-l.msgs:
		if !ok {
			return nil, ErrListenerClosed
		}
		// coalesce notifications that queued up meanwhile
		for drained := false; !drained; {
			select {
			case _, ok := <-l.msgs:
				if !ok {
					return nil, ErrListenerClosed
				}
			default:
				drained = true
			}
		}
		return l.repo.List(l.ctx, l.projectID)
	}
}

func (l *threadListener) Stop() { _ = l.ps.Close() }
