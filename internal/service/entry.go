package service

import (
	"context"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/apperr"
	"github.com/plateful/backend/internal/cache"
	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/retry"
	"github.com/plateful/backend/internal/types"
)

const (
	defaultEntryName = "Untitled meal"
	defaultPageLimit = 10
	maxPageLimit     = 100

	insertAttempts    = 3
	insertBackoffBase = time.Second
)

// FoodEntryService is the single point of truth for reading, writing and
// aggregating meal entries. It enforces ownership, absorbs transient backend
// failures and keeps the entry cache coherent with writes.
type FoodEntryService struct {
	db     *gorm.DB
	cache  cache.EntryCache
	insert retry.Policy
	clock  func() time.Time
}

// NewFoodEntryService creates a FoodEntryService. Pass cache.Disabled{} to
// bypass caching, e.g. in automated tests.
func NewFoodEntryService(db *gorm.DB, entryCache cache.EntryCache) *FoodEntryService {
	return &FoodEntryService{
		db:    db,
		cache: entryCache,
		insert: retry.Policy{
			MaxAttempts: insertAttempts,
			Backoff:     retry.Linear(insertBackoffBase),
			Retryable:   apperr.IsTransient,
		},
		clock: time.Now,
	}
}

// WithClock overrides the service clock, for deterministic tests.
func (s *FoodEntryService) WithClock(clock func() time.Time) *FoodEntryService {
	s.clock = clock
	return s
}

// WithInsertPolicy overrides the insert retry policy, for deterministic tests.
func (s *FoodEntryService) WithInsertPolicy(p retry.Policy) *FoodEntryService {
	s.insert = p
	return s
}

var imageMimes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ValidImageData reports whether s is a data URI with a supported image mime
// type and a base64 payload.
func ValidImageData(s string) bool {
	for _, mime := range imageMimes {
		if strings.HasPrefix(s, "data:"+mime+";base64,") {
			return true
		}
	}
	return false
}

// Create validates the input, fills defaults and inserts the entry, retrying
// transient backend failures. The id is assigned before the insert. On
// success the user's history cache is dropped.
func (s *FoodEntryService) Create(ctx context.Context, userID uuid.UUID, input types.EntryInput) (entry *models.FoodEntry, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[EntryService] panic during create: %v", r)
			entry, err = nil, apperr.New(apperr.KindPermanent, "internal failure")
		}
	}()

	if userID == uuid.Nil {
		return nil, apperr.New(apperr.KindValidation, "An owner is required for a food entry.")
	}
	if input.ImageData == "" {
		return nil, apperr.New(apperr.KindValidation, "A photo of the meal is required.")
	}
	if !ValidImageData(input.ImageData) {
		return nil, apperr.New(apperr.KindValidation, "The uploaded photo must be a JPEG, PNG, GIF or WebP image.")
	}

	now := s.clock()
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = defaultEntryName
	}
	mealDate := now
	if input.MealDate != nil {
		mealDate = *input.MealDate
	}

	entry = &models.FoodEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: input.Description,
		MealDate:    mealDate,
		MealType:    models.NormalizeMealType(input.MealType),
		ImageData:   input.ImageData,
	}

	err = s.insert.Do(ctx, func() error {
		return apperr.FromDB(s.db.WithContext(ctx).
			Session(&gorm.Session{NowFunc: s.clock}).
			Create(entry).Error)
	})
	if err != nil {
		log.Printf("[EntryService] create failed for user %s: %v", userID, err)
		return nil, err
	}

	s.cache.InvalidateUser(ctx, userID)
	return entry, nil
}

// historyQuery is the one shared filter-building step for the list and the
// count query. Keeping them identical is what makes the pagination total
// exact.
func (s *FoodEntryService) historyQuery(ctx context.Context, userID uuid.UUID, filter types.HistoryFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.FoodEntry{}).Where("user_id = ?", userID)
	if filter.From != nil {
		q = q.Where("created_at >= ?", startOfDay(*filter.From))
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", endOfDay(*filter.To))
	}
	return q
}

// GetHistoryByUserID returns one page of the user's entries, newest first,
// optionally restricted to an inclusive date range, with an exact total.
func (s *FoodEntryService) GetHistoryByUserID(ctx context.Context, userID uuid.UUID, filter types.HistoryFilter, page, limit int) (*types.HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	key := historyKey(userID, filter, page, limit)
	if cached, ok := s.cache.GetHistory(ctx, key); ok {
		return cached, nil
	}

	var total int64
	if err := s.historyQuery(ctx, userID, filter).Count(&total).Error; err != nil {
		return nil, apperr.FromDB(err)
	}

	var entries []models.FoodEntry
	if err := s.historyQuery(ctx, userID, filter).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&entries).Error; err != nil {
		return nil, apperr.FromDB(err)
	}

	result := &types.HistoryPage{
		Entries: entries,
		Pagination: types.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}
	s.cache.PutHistory(ctx, key, result)
	return result, nil
}

// GetByID fetches one entry. With includeImage false the image column is
// left out of the select to save bandwidth; the two variants have separate
// cache slots.
func (s *FoodEntryService) GetByID(ctx context.Context, id uuid.UUID, includeImage bool) (*models.FoodEntry, error) {
	if cached, ok := s.cache.GetEntry(ctx, id, includeImage); ok {
		return cached, nil
	}

	q := s.db.WithContext(ctx)
	if !includeImage {
		q = q.Select("id", "user_id", "name", "description", "meal_date", "meal_type", "created_at", "updated_at")
	}
	var entry models.FoodEntry
	if err := q.First(&entry, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err)
	}

	s.cache.PutEntry(ctx, id, includeImage, &entry)
	return &entry, nil
}

// Update applies a partial field replacement after verifying the row exists
// and belongs to userID. The two failure cases are deliberately not
// distinguished, to avoid leaking existence. updated_at is always stamped
// server-side.
func (s *FoodEntryService) Update(ctx context.Context, id, userID uuid.UUID, updates types.EntryUpdate) (*models.FoodEntry, error) {
	var entry models.FoodEntry
	if err := s.db.WithContext(ctx).
		First(&entry, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, ownershipError(err)
	}

	if updates.Name != nil {
		name := strings.TrimSpace(*updates.Name)
		if name == "" {
			return nil, apperr.New(apperr.KindValidation, "The entry name cannot be empty.")
		}
		entry.Name = name
	}
	if updates.Description != nil {
		if strings.TrimSpace(*updates.Description) == "" {
			return nil, apperr.New(apperr.KindValidation, "The entry description cannot be empty.")
		}
		entry.Description = *updates.Description
	}
	if updates.MealType != nil {
		entry.MealType = models.NormalizeMealType(*updates.MealType)
	}
	if updates.MealDate != nil {
		entry.MealDate = *updates.MealDate
	}
	if updates.ImageData != nil {
		if !ValidImageData(*updates.ImageData) {
			return nil, apperr.New(apperr.KindValidation, "The uploaded photo must be a JPEG, PNG, GIF or WebP image.")
		}
		entry.ImageData = *updates.ImageData
	}

	// gorm stamps updated_at itself on Save; route it through the service
	// clock so the stamp is the one this service observes.
	if err := s.db.WithContext(ctx).
		Session(&gorm.Session{NowFunc: s.clock}).
		Save(&entry).Error; err != nil {
		return nil, apperr.FromDB(err)
	}

	s.cache.InvalidateUser(ctx, userID)
	s.cache.InvalidateEntry(ctx, id)
	return &entry, nil
}

// Delete removes the entry after the same ownership check as Update.
func (s *FoodEntryService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	var entry models.FoodEntry
	if err := s.db.WithContext(ctx).
		First(&entry, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return ownershipError(err)
	}

	if err := s.db.WithContext(ctx).Delete(&models.FoodEntry{}, "id = ?", id).Error; err != nil {
		return apperr.FromDB(err)
	}

	s.cache.InvalidateUser(ctx, userID)
	s.cache.InvalidateEntry(ctx, id)
	return nil
}

// GetStats aggregates a user's logging activity. With zero entries it
// short-circuits without issuing the min/max or day-listing queries.
func (s *FoodEntryService) GetStats(ctx context.Context, userID uuid.UUID) (*types.EntryStats, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.FoodEntry{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	if total == 0 {
		return &types.EntryStats{}, nil
	}

	var first, last models.FoodEntry
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		First(&first).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&last).Error; err != nil {
		return nil, apperr.FromDB(err)
	}

	var stamps []time.Time
	if err := s.db.WithContext(ctx).Model(&models.FoodEntry{}).
		Where("user_id = ?", userID).
		Pluck("created_at", &stamps).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	days := make(map[string]struct{}, len(stamps))
	for _, t := range stamps {
		days[t.Local().Format("2006-01-02")] = struct{}{}
	}

	return &types.EntryStats{
		TotalEntries:    total,
		FirstEntry:      &first.CreatedAt,
		LastEntry:       &last.CreatedAt,
		DaysWithEntries: len(days),
	}, nil
}

// HasCareGrant reports whether viewerID holds a doctor-patient grant for
// ownerID's entries.
func (s *FoodEntryService) HasCareGrant(ctx context.Context, viewerID, ownerID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CareGrant{}).
		Where("doctor_id = ? AND patient_id = ?", viewerID, ownerID).
		Count(&count).Error; err != nil {
		return false, apperr.FromDB(err)
	}
	return count > 0, nil
}

func ownershipError(err error) error {
	classified := apperr.FromDB(err)
	if apperr.KindOf(classified) == apperr.KindNotFound {
		return apperr.New(apperr.KindUnauthorizedOrNotFound, "entry missing or not owned by caller")
	}
	return classified
}

// historyKey identifies the cached page by the normalized window instants,
// not the calendar dates: the same date named in two zones queries windows
// up to a day apart and must not share a slot.
func historyKey(userID uuid.UUID, filter types.HistoryFilter, page, limit int) cache.HistoryKey {
	key := cache.HistoryKey{UserID: userID, Page: page, Limit: limit}
	if filter.From != nil {
		key.From = strconv.FormatInt(startOfDay(*filter.From).Unix(), 10)
	}
	if filter.To != nil {
		key.To = strconv.FormatInt(endOfDay(*filter.To).Unix(), 10)
	}
	return key
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
