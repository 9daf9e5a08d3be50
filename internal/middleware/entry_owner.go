package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plateful/backend/internal/service"
)

// EntryContextKey is where the pre-loaded entry is stored for downstream
// handlers, saving them a duplicate fetch.
const EntryContextKey = "entry"

// EntryAccess gates id-scoped entry routes to the owner or a care-grant
// holder. Every failure path answers with the same 404-shaped response so a
// caller cannot tell "not yours" from "does not exist".
func EntryAccess(entries service.IFoodEntryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		idParam := c.Param("id")
		if idParam == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			c.Abort()
			return
		}
		entryID, err := uuid.Parse(idParam)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			c.Abort()
			return
		}

		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		userID, ok := userIDVal.(uuid.UUID)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		entry, err := entries.GetByID(c.Request.Context(), entryID, true)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			c.Abort()
			return
		}

		if entry.UserID != userID {
			granted, err := entries.HasCareGrant(c.Request.Context(), userID, entry.UserID)
			if err != nil || !granted {
				c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
				c.Abort()
				return
			}
		}

		c.Set(EntryContextKey, entry)
		c.Next()
	}
}
