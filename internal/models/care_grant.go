package models

import (
	"time"

	"github.com/google/uuid"
)

// CareGrant is a doctor-patient authorization: the doctor may view (not
// mutate) the patient's food entries. One row per (doctor, patient) pair.
type CareGrant struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	DoctorID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_care_grants_pair" json:"doctor_id"`
	PatientID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_care_grants_pair" json:"patient_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (CareGrant) TableName() string {
	return "care_grants"
}
