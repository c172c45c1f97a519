/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY-LIKE FIELDS:
  Balances cross the wire as JSON numbers (float64). Internally they are
  decimal.Decimal; the conversion happens only here, at the edge.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

// =============================================================================
// AUTH
// =============================================================================

// LoginRequest is the credential payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenDTO is the successful login response.
type TokenDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
}

// UserDTO represents the authenticated principal. The password hash is
// never serialized.
type UserDTO struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	IsActive  bool    `json:"is_active"`
	CreatedAt string  `json:"created_at"`
	LastLogin *string `json:"last_login,omitempty"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// CreateEmployeeRequest creates the account and the HR profile together.
type CreateEmployeeRequest struct {
	Email               string  `json:"email"`
	Password            string  `json:"password"`
	Role                string  `json:"role"`
	FullName            string  `json:"full_name"`
	Department          string  `json:"department"`
	Position            string  `json:"position"`
	HireDate            string  `json:"hire_date"` // YYYY-MM-DD
	PhoneNumber         string  `json:"phone_number"`
	InitialLeaveBalance float64 `json:"initial_leave_balance"`
}

// EmployeeDTO is the enriched employee view: profile fields plus the
// current month's closing balance and this year's sick-day usage.
type EmployeeDTO struct {
	ID                  string  `json:"id"`
	UserID              string  `json:"user_id"`
	FullName            string  `json:"full_name"`
	Email               string  `json:"email"`
	Department          string  `json:"department"`
	Position            string  `json:"position"`
	HireDate            string  `json:"hire_date"`
	PhoneNumber         string  `json:"phone_number"`
	InitialLeaveBalance float64 `json:"initial_leave_balance"`
	CurrentLeaveBalance float64 `json:"current_leave_balance"`
	SickDaysUsed        int     `json:"sick_days_used"`
	SickDaysRemaining   int     `json:"sick_days_remaining"`
	CreatedAt           string  `json:"created_at"`
}

// =============================================================================
// LEAVE ADJUSTMENTS
// =============================================================================

// AdjustLeaveRequest is the body for POST /api/leave/adjust/{employeeID}.
// adjustment must be one of +1, -1, +0.5, -0.5.
type AdjustLeaveRequest struct {
	AdjustmentAmount float64 `json:"adjustment"`
	Reason           string  `json:"reason"`
}

// AdjustLeaveResponse confirms an applied adjustment.
type AdjustLeaveResponse struct {
	Message    string  `json:"message"`
	NewBalance float64 `json:"new_balance"`
	Adjustment float64 `json:"adjustment"`
}

// AdjustmentDTO is one historical adjustment event.
type AdjustmentDTO struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Amount     float64 `json:"amount"`
	Reason     string  `json:"reason"`
	AdjustedBy string  `json:"adjusted_by"`
	CreatedAt  string  `json:"created_at"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
