// Package redis provides Redis persistence for process groups.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/operion-console/pkg/models"
	"github.com/dukex/operion-console/pkg/persistence"
	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "operion:console:process-group:"
	indexKey  = "operion:console:process-groups"
)

// Persistence stores process groups as JSON strings plus a set of ids.
type Persistence struct {
	client           *goredis.Client
	logger           *slog.Logger
	processGroupRepo *ProcessGroupRepository
}

// NewPersistence connects to the Redis server at redisURL (redis://...).
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{
		client:           client,
		logger:           logger,
		processGroupRepo: &ProcessGroupRepository{client: client},
	}, nil
}

// Close closes the client.
func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

// HealthCheck pings the server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// ProcessGroupRepository returns the Redis process-group repository.
func (p *Persistence) ProcessGroupRepository() persistence.ProcessGroupRepository {
	return p.processGroupRepo
}

// ProcessGroupRepository implements persistence.ProcessGroupRepository on Redis.
type ProcessGroupRepository struct {
	client *goredis.Client
}

// List loads every indexed group and pages in memory.
func (r *ProcessGroupRepository) List(ctx context.Context, opts persistence.ListProcessGroupsOptions) (*persistence.ProcessGroupListResult, error) {
	if err := persistence.NormalizeListOptions(&opts); err != nil {
		return nil, err
	}

	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list process group ids: %w", err)
	}

	groups := make([]*models.ProcessGroup, 0, len(ids))

	for _, id := range ids {
		group, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load process group %s: %w", id, err)
		}

		if group != nil {
			groups = append(groups, group)
		}
	}

	return persistence.ApplyListOptions(groups, opts), nil
}

// GetByID returns nil, nil for a missing key.
func (r *ProcessGroupRepository) GetByID(ctx context.Context, id string) (*models.ProcessGroup, error) {
	data, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch process group %s: %w", id, err)
	}

	var group models.ProcessGroup

	err = json.Unmarshal(data, &group)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal process group %s: %w", id, err)
	}

	return &group, nil
}

// Save writes the document and its index entry in one transaction.
func (r *ProcessGroupRepository) Save(ctx context.Context, group *models.ProcessGroup) error {
	now := time.Now().UTC()
	group.UpdatedAt = &now

	data, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("failed to marshal process group %s: %w", group.ID, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, keyPrefix+group.ID, data, 0)
		pipe.SAdd(ctx, indexKey, group.ID)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save process group %s: %w", group.ID, err)
	}

	return nil
}

// Delete removes the document and its index entry.
func (r *ProcessGroupRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, keyPrefix+id)
		pipe.SRem(ctx, indexKey, id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete process group %s: %w", id, err)
	}

	return nil
}
