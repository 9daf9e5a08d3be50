package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/types"
)

// Freshness windows. A slot older than its window behaves as absent.
const (
	HistoryTTL = 5 * time.Minute
	EntryTTL   = 10 * time.Minute
)

// HistoryKey identifies one cached history query. The user id leads the
// string form so all of a user's slots share a prefix and can be dropped
// together.
type HistoryKey struct {
	UserID uuid.UUID
	Page   int
	Limit  int
	From   string
	To     string
}

func (k HistoryKey) String() string {
	return fmt.Sprintf("%s%d:%d:%s:%s", historyPrefix(k.UserID), k.Page, k.Limit, k.From, k.To)
}

func historyPrefix(userID uuid.UUID) string {
	return fmt.Sprintf("history:%s:", userID)
}

func entryKey(id uuid.UUID, withImage bool) string {
	if withImage {
		return fmt.Sprintf("entry:%s:full", id)
	}
	return fmt.Sprintf("entry:%s:meta", id)
}

// EntryCache avoids redundant reads for repeated history queries and
// single-entry lookups, within a freshness bound. The with-image and
// without-image entry slots are distinct: a cached image-less entry must
// never satisfy a request that needs the image.
type EntryCache interface {
	GetHistory(ctx context.Context, key HistoryKey) (*types.HistoryPage, bool)
	PutHistory(ctx context.Context, key HistoryKey, page *types.HistoryPage)
	GetEntry(ctx context.Context, id uuid.UUID, withImage bool) (*models.FoodEntry, bool)
	PutEntry(ctx context.Context, id uuid.UUID, withImage bool, entry *models.FoodEntry)
	InvalidateUser(ctx context.Context, userID uuid.UUID)
	InvalidateEntry(ctx context.Context, id uuid.UUID)
}

// Disabled is the nop cache used when caching is switched off, e.g. to keep
// automated tests deterministic.
type Disabled struct{}

func (Disabled) GetHistory(context.Context, HistoryKey) (*types.HistoryPage, bool) {
	return nil, false
}
func (Disabled) PutHistory(context.Context, HistoryKey, *types.HistoryPage) {}
func (Disabled) GetEntry(context.Context, uuid.UUID, bool) (*models.FoodEntry, bool) {
	return nil, false
}
func (Disabled) PutEntry(context.Context, uuid.UUID, bool, *models.FoodEntry) {}
func (Disabled) InvalidateUser(context.Context, uuid.UUID)                    {}
func (Disabled) InvalidateEntry(context.Context, uuid.UUID)                   {}
