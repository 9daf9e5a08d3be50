package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/models"
)

// GrantHandler manages doctor-patient care grants. The patient side owns the
// grant: only the patient can create or revoke access to their entries.
type GrantHandler struct {
	db *gorm.DB
}

func NewGrantHandler(db *gorm.DB) *GrantHandler {
	return &GrantHandler{db: db}
}

func (h *GrantHandler) RegisterRoutes(router *gin.RouterGroup) {
	grants := router.Group("/grants")
	{
		grants.POST("", h.Create)
		grants.GET("", h.List)
		grants.DELETE("/:id", h.Revoke)
	}
}

func (h *GrantHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil || doctorID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid doctor id"})
		return
	}

	var doctor models.User
	if err := h.db.First(&doctor, "id = ?", doctorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "doctor not found"})
		return
	}

	grant := models.CareGrant{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		PatientID: userID,
	}
	if err := h.db.Create(&grant).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "grant already exists"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"grant": grant})
}

func (h *GrantHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var grants []models.CareGrant
	if err := h.db.
		Where("patient_id = ? OR doctor_id = ?", userID, userID).
		Find(&grants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list grants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"grants": grants})
}

func (h *GrantHandler) Revoke(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	grantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "grant not found"})
		return
	}

	result := h.db.Delete(&models.CareGrant{}, "id = ? AND patient_id = ?", grantID, userID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke grant"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "grant not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "grant revoked"})
}
