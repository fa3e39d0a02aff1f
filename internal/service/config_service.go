package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// SettingCache is the read-through cache in front of the settings table.
// A nil cache simply disables caching.
type SettingCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// ConfigService exposes runtime configuration reads and admin updates.
type ConfigService struct {
	settings   repository.SettingRepository
	cache      SettingCache
	dispatcher events.Dispatcher
}

// NewConfigService builds the service.
func NewConfigService(settings repository.SettingRepository, cache SettingCache, dispatcher events.Dispatcher) *ConfigService {
	return &ConfigService{settings: settings, cache: cache, dispatcher: dispatcher}
}

// Get resolves the requested keys, serving cached values where possible
// and falling back to the store for the rest.
func (s *ConfigService) Get(ctx context.Context, keys []string) ([]*domain.Setting, error) {
	settings := make([]*domain.Setting, 0, len(keys))
	missing := make([]string, 0, len(keys))

	for _, key := range keys {
		if s.cache != nil {
			if value, ok := s.cache.Get(ctx, key); ok {
				settings = append(settings, &domain.Setting{Key: key, Value: value})
				continue
			}
		}
		missing = append(missing, key)
	}

	if len(missing) > 0 {
		stored, err := s.settings.GetByKeys(ctx, missing)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		for _, setting := range stored {
			if s.cache != nil {
				s.cache.Set(ctx, setting.Key, setting.Value)
			}
			settings = append(settings, setting)
		}
	}
	return settings, nil
}

// Update upserts values for the requested keys on behalf of an admin
// actor. Every requested key must be present in the payload, otherwise
// the whole request is rejected. Each applied key produces one audit
// event.
func (s *ConfigService) Update(ctx context.Context, actorID string, keys []string, values map[string]string) error {
	if len(keys) == 0 || values == nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:    events.EventConfigRejected,
			ActorID: &actorID,
			Payload: events.ConfigEventPayload{Reason: "invalid configuration update request"},
		})
		return apperrors.NewValidationError("invalid config", nil)
	}

	for _, key := range keys {
		value, ok := values[key]
		if !ok {
			_ = s.dispatcher.Publish(ctx, events.Event{
				Type:    events.EventConfigRejected,
				ActorID: &actorID,
				Payload: events.ConfigEventPayload{Key: key, Reason: fmt.Sprintf("key %s missing from payload", key)},
			})
			return apperrors.NewValidationError("config key not found", map[string]any{"key": key})
		}

		if _, err := s.settings.Upsert(ctx, key, value); err != nil {
			return apperrors.MapError(err)
		}
		if s.cache != nil {
			s.cache.Set(ctx, key, value)
		}

		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:    events.EventConfigUpdated,
			ActorID: &actorID,
			Payload: events.ConfigEventPayload{Key: key},
		})
	}
	return nil
}
