package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pulsedash/pulsedash/internal/cache"
	"github.com/pulsedash/pulsedash/internal/model"
)

const (
	// userKeyPrefix prefixes the JSON document of a user.
	userKeyPrefix = "user:"
	// userEmailKeyPrefix prefixes the email -> id unique index.
	userEmailKeyPrefix = "user:email:"
)

// userDocument is the persisted layout of a user in Redis.
type userDocument struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// createUserScript writes the email index and the user document atomically.
// It returns 0 without writing anything if the email is already taken.
var createUserScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 1 then
		return 0
	end
	redis.call('SET', KEYS[1], ARGV[1])
	redis.call('SET', KEYS[2], ARGV[2])
	return 1
`)

// RedisStore is a credential store that keeps users as JSON documents in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore on top of the shared cache connection.
func NewRedisStore(c *cache.Cache) *RedisStore {
	return &RedisStore{client: c.Client()}
}

// CreateUser stores a new user. Returns ErrEmailExists if the email is taken.
func (s *RedisStore) CreateUser(ctx context.Context, user *model.User) error {
	doc, err := json.Marshal(userDocument{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	created, err := createUserScript.Run(ctx, s.client,
		[]string{emailKey(user.Email), userKeyPrefix + user.ID},
		user.ID, doc,
	).Int()
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	if created == 0 {
		return ErrEmailExists
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *RedisStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	data, err := s.client.Get(ctx, userKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	var doc userDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", id, err)
	}

	return &model.User{
		ID:           doc.ID,
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *RedisStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	id, err := s.client.Get(ctx, emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// emailKey builds the index key for an email. Emails match exactly, as in PostgreSQL.
func emailKey(email string) string {
	return userEmailKeyPrefix + email
}
