package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plateful/backend/internal/apperr"
	"github.com/plateful/backend/internal/middleware"
	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/service"
	"github.com/plateful/backend/internal/types"
)

// Upload payloads are size-bounded; the base64 encoding overhead keeps the
// decoded image safely under 10MB.
const maxUploadBytes = 10 << 20

type EntryHandler struct {
	entries service.IFoodEntryService
	photos  *service.PhotoService
}

func NewEntryHandler(entries service.IFoodEntryService, photos *service.PhotoService) *EntryHandler {
	return &EntryHandler{entries: entries, photos: photos}
}

// RegisterRoutes wires the entry endpoints. extraUpload middleware (rate
// limiting) is applied to the upload route only.
func (h *EntryHandler) RegisterRoutes(router *gin.RouterGroup, extraUpload ...gin.HandlerFunc) {
	entries := router.Group("/entries")
	{
		upload := append(append([]gin.HandlerFunc{}, extraUpload...), h.Upload)
		entries.POST("", upload...)
		entries.GET("", h.History)
		entries.GET("/stats", h.Stats)

		scoped := entries.Group("/:id", middleware.EntryAccess(h.entries))
		{
			scoped.GET("", h.Get)
			scoped.GET("/photo-url", h.PhotoURL)
			scoped.PUT("", h.Update)
			scoped.DELETE("", h.Delete)
		}
	}
}

func (h *EntryHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	var req UploadEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	input := types.EntryInput{
		Name:        req.Name,
		Description: req.Description,
		MealType:    req.MealType,
		ImageData:   req.ImageData,
	}
	if req.MealDate != "" {
		mealDate, err := parseDate(req.MealDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "meal_date must be YYYY-MM-DD or RFC 3339"})
			return
		}
		input.MealDate = &mealDate
	}

	entry, err := h.entries.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.photos.Enabled() {
		// Best effort; the inline copy on the entry is canonical.
		if _, err := h.photos.ArchivePhoto(c.Request.Context(), entry.ID, entry.ImageData); err != nil {
			log.Printf("[EntryHandler] photo archival for %s failed: %v", entry.ID, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

func (h *EntryHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	var filter types.HistoryFilter
	if from := c.Query("date_from"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_from must be YYYY-MM-DD"})
			return
		}
		filter.From = &t
	}
	if to := c.Query("date_to"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_to must be YYYY-MM-DD"})
			return
		}
		filter.To = &t
	}

	pageResult, err := h.entries.GetHistoryByUserID(c.Request.Context(), userID, filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResult)
}

func (h *EntryHandler) Get(c *gin.Context) {
	entry := entryFromContext(c)
	if entry == nil {
		return
	}

	if c.Query("include_image") == "false" {
		// Refetch through the image-less path so the bandwidth saving and
		// the cache-slot separation both hold.
		slim, err := h.entries.GetByID(c.Request.Context(), entry.ID, false)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entry": slim})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// PhotoURL returns a short-lived link to the archived original-resolution
// photo. Only available when S3 archival is configured.
func (h *EntryHandler) PhotoURL(c *gin.Context) {
	entry := entryFromContext(c)
	if entry == nil {
		return
	}

	if !h.photos.Enabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo archive is not available"})
		return
	}

	key, err := service.ArchiveKey(entry.ID, entry.ImageData)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo archive is not available"})
		return
	}
	url, err := h.photos.PhotoURL(c.Request.Context(), key, 15*time.Minute)
	if err != nil {
		log.Printf("[EntryHandler] presign for %s failed: %v", entry.ID, err)
		respondError(c, apperr.Wrap(apperr.KindTransient, "presign failed", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *EntryHandler) Update(c *gin.Context) {
	entry := entryFromContext(c)
	if entry == nil {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updates := types.EntryUpdate{
		Name:        req.Name,
		Description: req.Description,
		MealType:    req.MealType,
		ImageData:   req.ImageData,
	}
	if req.MealDate != nil {
		mealDate, err := parseDate(*req.MealDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "meal_date must be YYYY-MM-DD or RFC 3339"})
			return
		}
		updates.MealDate = &mealDate
	}

	updated, err := h.entries.Update(c.Request.Context(), entry.ID, userID, updates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": updated})
}

func (h *EntryHandler) Delete(c *gin.Context) {
	entry := entryFromContext(c)
	if entry == nil {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.entries.Delete(c.Request.Context(), entry.ID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "entry deleted"})
}

func (h *EntryHandler) Stats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.entries.GetStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	return userID, true
}

func entryFromContext(c *gin.Context) *models.FoodEntry {
	entryVal, exists := c.Get(middleware.EntryContextKey)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return nil
	}
	entry, ok := entryVal.(*models.FoodEntry)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return nil
	}
	return entry
}

// respondError maps the error taxonomy onto HTTP statuses. Only mapped
// user-facing messages leave the process.
func respondError(c *gin.Context, err error) {
	msg := apperr.UserMessage(err)
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
	case apperr.KindNotFound, apperr.KindUnauthorizedOrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": msg})
	case apperr.KindTransient:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msg})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
