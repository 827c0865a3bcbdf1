package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tastebox/backend/internal/extraction"
)

const draftTTL = 24 * time.Hour

// ErrDraftNotFound is returned for unknown or expired drafts.
var ErrDraftNotFound = errors.New("draft not found")

// Draft is an extracted recipe awaiting confirmation by its owner.
type Draft struct {
	ID        string                       `json:"id"`
	UserID    string                       `json:"user_id"`
	Recipe    *extraction.StructuredRecipe `json:"recipe"`
	CreatedAt time.Time                    `json:"created_at"`
	ExpiresAt time.Time                    `json:"expires_at"`
}

// DraftService stores extraction previews in Redis
type DraftService struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewDraftService creates a new DraftService instance
func NewDraftService(client *redis.Client) *DraftService {
	return &DraftService{redis: client, ttl: draftTTL}
}

func draftKey(id string) string {
	return fmt.Sprintf("recipe:draft:%s", id)
}

// SaveDraft saves a recipe draft to Redis
func (s *DraftService) SaveDraft(ctx context.Context, userID string, recipe *extraction.StructuredRecipe) (*Draft, error) {
	now := time.Now()
	draft := &Draft{
		ID:        uuid.New().String(),
		UserID:    userID,
		Recipe:    recipe,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	data, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft: %w", err)
	}

	if err := s.redis.Set(ctx, draftKey(draft.ID), data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to save draft to Redis: %w", err)
	}

	return draft, nil
}

// GetDraft retrieves a recipe draft owned by userID
func (s *DraftService) GetDraft(ctx context.Context, userID, id string) (*Draft, error) {
	data, err := s.redis.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft from Redis: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	if draft.UserID != userID {
		return nil, ErrDraftNotFound
	}

	return &draft, nil
}

// DeleteDraft removes a recipe draft owned by userID
func (s *DraftService) DeleteDraft(ctx context.Context, userID, id string) error {
	if _, err := s.GetDraft(ctx, userID, id); err != nil {
		return err
	}
	if err := s.redis.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft from Redis: %w", err)
	}
	return nil
}
