package api

// RegisterRequest is the body for account creation.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the body for password sign-in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the bearer token after register/login.
type AuthResponse struct {
	Token string `json:"token"`
}

// EmailRequest is the body for resend-confirmation and password-reset
// requests.
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// UploadEntryRequest is the body for logging a meal. ImageData is a data URI
// (mime type + base64 payload).
type UploadEntryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MealType    string `json:"meal_type"`
	MealDate    string `json:"meal_date"`
	ImageData   string `json:"image_data" binding:"required"`
}

// UpdateEntryRequest is a partial field replacement; absent fields are left
// untouched.
type UpdateEntryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	MealType    *string `json:"meal_type"`
	MealDate    *string `json:"meal_date"`
	ImageData   *string `json:"image_data"`
}

// CreateGrantRequest grants a doctor view access to the caller's entries.
type CreateGrantRequest struct {
	DoctorID string `json:"doctor_id" binding:"required,uuid"`
}
