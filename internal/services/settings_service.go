package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chapamarket/backend/internal/auth"
	"chapamarket/backend/internal/config"
	"chapamarket/backend/internal/models"
)

// ErrSettingNotFound is returned when a settings key has no stored value.
var ErrSettingNotFound = errors.New("setting not found")

// ISettingsService defines the interface for the admin_settings bag:
// payment configuration and premium feature toggles.
type ISettingsService interface {
	Load(ctx context.Context) error
	Get(ctx context.Context, key string) (interface{}, error)
	GetString(ctx context.Context, key string, defaultValue string) string
	GetBool(ctx context.Context, key string, defaultValue bool) bool
	GetFloat64(ctx context.Context, key string, defaultValue float64) float64
	GetAll(ctx context.Context) ([]models.Setting, error)
	Set(ctx context.Context, actor auth.Session, key string, value interface{}) error
	GetPaymentConfig(ctx context.Context) (*models.PaymentConfig, error)
	SubscribeToChanges(ctx context.Context) error
}

const (
	settingsCollection    = "admin_settings"
	settingsUpdateChannel = "settings_updates"
)

// settingsService implements ISettingsService with an in-memory cache kept
// fresh through a Redis pub/sub channel shared by all instances.
type settingsService struct {
	db    *mongo.Database
	cfg   *config.Config
	rdb   *redis.Client // nil disables cross-instance invalidation
	cache map[string]interface{}
	mutex sync.RWMutex
}

// NewSettingsService creates a new SettingsService. It loads the settings
// once and, when a Redis client is supplied, listens for updates published
// by other instances.
func NewSettingsService(db *mongo.Database, cfg *config.Config, rdb *redis.Client) ISettingsService {
	s := &settingsService{
		db:    db,
		cfg:   cfg,
		rdb:   rdb,
		cache: make(map[string]interface{}),
	}
	if err := s.Load(context.Background()); err != nil {
		log.Printf("WARNING: Failed to load initial settings from DB: %v. Starting with an empty cache.", err)
	}
	if rdb != nil {
		go func() {
			if err := s.SubscribeToChanges(context.Background()); err != nil {
				log.Printf("CRITICAL: Settings Pub/Sub listener stopped: %v", err)
			}
		}()
	}
	return s
}

// Load fetches all settings from the store and replaces the cache.
func (s *settingsService) Load(ctx context.Context) error {
	collection := s.db.Collection(settingsCollection)
	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to query settings collection: %w", err)
	}
	defer cursor.Close(ctx)

	newCache := make(map[string]interface{})
	for cursor.Next(ctx) {
		var entry models.Setting
		if err := cursor.Decode(&entry); err == nil {
			newCache[entry.Key] = entry.Value
		} else {
			log.Printf("Warning: Failed to decode setting entry during load: %v", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("error iterating settings cursor: %w", err)
	}

	s.mutex.Lock()
	s.cache = newCache
	s.mutex.Unlock()
	log.Printf("Loaded %d entries into settings cache from DB.", len(newCache))
	return nil
}

// Get returns the cached value for key, falling back to a direct lookup when
// the key is not cached.
func (s *settingsService) Get(ctx context.Context, key string) (interface{}, error) {
	s.mutex.RLock()
	value, ok := s.cache[key]
	s.mutex.RUnlock()
	if ok {
		return value, nil
	}

	var entry models.Setting
	err := s.db.Collection(settingsCollection).FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("error fetching setting %s: %w", key, err)
	}

	s.mutex.Lock()
	s.cache[key] = entry.Value
	s.mutex.Unlock()
	return entry.Value, nil
}

// GetString returns the setting as a string or the default.
func (s *settingsService) GetString(ctx context.Context, key string, defaultValue string) string {
	value, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	if str, ok := value.(string); ok {
		return str
	}
	log.Printf("Warning: Setting '%s' is not a string (%T), using default.", key, value)
	return defaultValue
}

// GetBool returns the setting as a bool or the default.
func (s *settingsService) GetBool(ctx context.Context, key string, defaultValue bool) bool {
	value, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	if b, ok := value.(bool); ok {
		return b
	}
	log.Printf("Warning: Setting '%s' is not a bool (%T), using default.", key, value)
	return defaultValue
}

// GetFloat64 returns the setting as a float64 or the default. Integral BSON
// numbers are widened.
func (s *settingsService) GetFloat64(ctx context.Context, key string, defaultValue float64) float64 {
	value, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		log.Printf("Warning: Setting '%s' is not a numeric type (%T), using default.", key, value)
		return defaultValue
	}
}

// GetAll returns every stored setting record.
func (s *settingsService) GetAll(ctx context.Context) ([]models.Setting, error) {
	cursor, err := s.db.Collection(settingsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer cursor.Close(ctx)

	var settings []models.Setting
	if err = cursor.All(ctx, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

// Set upserts a setting and publishes an invalidation so other instances
// reload their caches.
func (s *settingsService) Set(ctx context.Context, actor auth.Session, key string, value interface{}) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}

	collection := s.db.Collection(settingsCollection)
	update := bson.M{"$set": bson.M{
		"value":      value,
		"updated_at": time.Now().UTC(),
		"updated_by": actor.UserID,
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := collection.UpdateOne(ctx, bson.M{"_id": key}, update, opts); err != nil {
		return fmt.Errorf("db error setting %s: %w", key, err)
	}

	s.mutex.Lock()
	s.cache[key] = value
	s.mutex.Unlock()

	if s.rdb != nil {
		if err := s.rdb.Publish(ctx, settingsUpdateChannel, key).Err(); err != nil {
			// Other instances will serve stale values until their next load.
			log.Printf("Warning: failed to publish settings update for %s: %v", key, err)
		}
	}
	return nil
}

// GetPaymentConfig decodes the payment_config setting payload.
func (s *settingsService) GetPaymentConfig(ctx context.Context) (*models.PaymentConfig, error) {
	value, err := s.Get(ctx, models.SettingPaymentConfig)
	if err != nil {
		return nil, err
	}

	// The bag stores arbitrary structured payloads; round-trip through BSON
	// to get the typed view.
	raw, err := bson.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment config payload: %w", err)
	}
	var pc models.PaymentConfig
	if err := bson.Unmarshal(raw, &pc); err != nil {
		return nil, fmt.Errorf("failed to decode payment config payload: %w", err)
	}
	return &pc, nil
}

// SubscribeToChanges blocks, reloading the cache each time another instance
// publishes a settings update. Returns when the context is cancelled or the
// subscription fails.
func (s *settingsService) SubscribeToChanges(ctx context.Context) error {
	if s.rdb == nil {
		return fmt.Errorf("no redis client configured for settings updates")
	}

	pubsub := s.rdb.Subscribe(ctx, settingsUpdateChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("settings update channel closed")
			}
			log.Printf("Settings update received for key '%s', reloading cache.", msg.Payload)
			if err := s.Load(ctx); err != nil {
				log.Printf("Warning: failed to reload settings after update: %v", err)
			}
		}
	}
}
