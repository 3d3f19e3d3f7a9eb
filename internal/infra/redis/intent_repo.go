package redis

import (
	"context"
	"encoding/json"
	"time"

	"classifieds-marketplace/internal/domain"
	"classifieds-marketplace/internal/domain/model"
	"classifieds-marketplace/internal/domain/ports/repository"
)

var _ repository.PurchaseIntentRepository = (*IntentRepo)(nil)

// IntentRepo stages purchase intents in Redis. The TTL bounds how long
// an abandoned checkout lingers; an abandoned intent simply expires and
// no cleanup is needed because nothing else was persisted yet.
type IntentRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewIntentRepo(client RedisClient, ttl time.Duration) *IntentRepo {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &IntentRepo{client: client, ttl: ttl}
}

func (r *IntentRepo) key(id string) string {
	return "purchase_intent:" + id
}

func (r *IntentRepo) Save(ctx context.Context, intent *model.PurchaseIntent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(intent.ID), data, r.ttl)
}

func (r *IntentRepo) Find(ctx context.Context, id string) (*model.PurchaseIntent, error) {
	data, err := r.client.Get(ctx, r.key(id))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return decode(data)
}

func (r *IntentRepo) Consume(ctx context.Context, id string) (*model.PurchaseIntent, error) {
	data, err := r.client.GetDel(ctx, r.key(id))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrIntentConsumed
		}
		return nil, err
	}
	return decode(data)
}

func (r *IntentRepo) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id))
}

func decode(data string) (*model.PurchaseIntent, error) {
	var intent model.PurchaseIntent
	if err := json.Unmarshal([]byte(data), &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}
