/*
handlers.go - HTTP API handlers for the HR leave ledger

PURPOSE:
  Exposes the leave-ledger core via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Auth:
    POST   /api/auth/login                    Exchange credentials for a token
    GET    /api/auth/me                       Current authenticated principal

  Employees (admin, hr create; managers may also read):
    GET    /api/employees                     List active employees
    POST   /api/employees                     Create account + profile
    GET    /api/employees/{id}                Enriched employee view
    GET    /api/employees/{id}/adjustments    Adjustment history

  Leave (admin, hr):
    POST   /api/leave/adjust/{employeeID}     Apply one bounded adjustment

  Misc:
    GET    /api/health                        Liveness probe

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (engine, resolver, store)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid adjustment amount, duplicate email
  - 401: Missing/invalid token, bad credentials
  - 403: Role not in the endpoint's allow-list
  - 404: Unknown or deactivated employee
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - middleware.go: Auth and logging middleware
  - server.go: Router setup
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/waqtek/hr-ledger/auth"
	"github.com/waqtek/hr-ledger/ledger"
	"github.com/waqtek/hr-ledger/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Engine   *ledger.AdjustmentEngine
	Resolver *ledger.BalanceResolver
	Audit    *ledger.AuditRecorder
	Tokens   *auth.TokenIssuer
	Log      *logrus.Logger

	now func() time.Time
}

// NewHandler creates a handler wired to the given store and token issuer.
func NewHandler(store *sqlite.Store, tokens *auth.TokenIssuer, log *logrus.Logger) *Handler {
	return &Handler{
		Store:    store,
		Engine:   ledger.NewAdjustmentEngine(store),
		Resolver: ledger.NewBalanceResolver(store),
		Audit:    ledger.NewAuditRecorder(store),
		Tokens:   tokens,
		Log:      log,
		now:      time.Now,
	}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login exchanges email/password for a bearer token.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.Store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up account", err)
		return
	}
	// Same response for unknown email and wrong password.
	if user == nil || !user.IsActive {
		writeError(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	if err := h.Store.TouchLastLogin(r.Context(), user.ID, h.now().UTC()); err != nil {
		h.Log.WithError(err).Warn("failed to stamp last login")
	}
	if err := h.Audit.Record(r.Context(), user.ID, ledger.ActionLogin, "user", user.ID, map[string]any{
		"email": user.Email,
	}); err != nil {
		h.Log.WithError(err).Warn("failed to audit login")
	}

	writeJSON(w, http.StatusOK, TokenDTO{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      user.ID,
		Role:        string(user.Role),
	})
}

// Me returns the authenticated principal.
// GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	dto := UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLogin != nil {
		last := user.LastLogin.Format(time.RFC3339)
		dto.LastLogin = &last
	}

	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// CreateEmployee creates the user account, the HR profile, the hire month's
// seeded balance row, and the sick-day counter in one store transaction.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(r.Context())

	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	role := ledger.Role(req.Role)
	if role == "" {
		role = ledger.RoleEmployee
	}
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown role", nil)
		return
	}
	if !auth.CanAssignRole(actor.Role, role) {
		writeError(w, http.StatusForbidden, "Not allowed to assign this role", nil)
		return
	}

	dept := ledger.Department(req.Department)
	if !dept.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown department", nil)
		return
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		writeError(w, http.StatusBadRequest, "email, password and full_name are required", nil)
		return
	}

	hireDate, err := time.Parse("2006-01-02", req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password", err)
		return
	}

	now := h.now().UTC()
	initial := decimal.NewFromFloat(req.InitialLeaveBalance)

	user := ledger.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
	}
	emp := ledger.Employee{
		ID:                  uuid.NewString(),
		UserID:              user.ID,
		FullName:            req.FullName,
		Email:               req.Email,
		Department:          dept,
		Position:            req.Position,
		HireDate:            hireDate,
		PhoneNumber:         req.PhoneNumber,
		InitialLeaveBalance: initial,
		IsActive:            true,
		CreatedAt:           now,
		CreatedBy:           actor.ID,
	}
	// Seed the current month, not the hire month: hire dates may be
	// backdated, and the first balance read must show the granted
	// allowance instead of an empty ledger.
	balance := ledger.LeaveBalance{
		ID:             uuid.NewString(),
		EmployeeID:     emp.ID,
		Year:           now.Year(),
		Month:          int(now.Month()),
		OpeningBalance: initial,
		LeaveTaken:     decimal.Zero,
		HRAdjustments:  decimal.Zero,
		ClosingBalance: initial,
		CreatedAt:      now,
	}
	sick := ledger.SickDays{
		ID:           uuid.NewString(),
		EmployeeID:   emp.ID,
		Year:         now.Year(),
		UsedDays:     0,
		TotalAllowed: ledger.SickDayAllowance,
		LastReset:    now,
	}

	if err := h.Store.CreateEmployeeProfile(r.Context(), user, emp, balance, sick); err != nil {
		if errors.Is(err, ledger.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, "Email already registered", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.ID, ledger.ActionCreateEmployee, "employee", emp.ID, map[string]any{
		"employee_name": emp.FullName,
		"department":    string(emp.Department),
		"role":          string(role),
	}); err != nil {
		h.Log.WithError(err).Warn("failed to audit employee creation")
	}

	writeJSON(w, http.StatusCreated, h.toEmployeeDTO(r, emp))
}

// ListEmployees returns all active employees with their current balances.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = h.toEmployeeDTO(r, e)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single enriched employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, h.toEmployeeDTO(r, *emp))
}

// ListAdjustments returns the employee's adjustment history, newest first.
// GET /api/employees/{id}/adjustments
func (h *Handler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	adjustments, err := h.Store.ListAdjustments(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list adjustments", err)
		return
	}

	dtos := make([]AdjustmentDTO, len(adjustments))
	for i, a := range adjustments {
		amount, _ := a.Amount.Float64()
		dtos[i] = AdjustmentDTO{
			ID:         a.ID,
			EmployeeID: a.EmployeeID,
			Amount:     amount,
			Reason:     a.Reason,
			AdjustedBy: a.AdjustedBy,
			CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		}
	}

	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// LEAVE ADJUSTMENT
// =============================================================================

// AdjustLeave applies one bounded adjustment to the employee's current
// month. Rejected amounts leave every table untouched.
// POST /api/leave/adjust/{employeeID}
func (h *Handler) AdjustLeave(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var req AdjustLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount := decimal.NewFromFloat(req.AdjustmentAmount)
	result, err := h.Engine.Apply(r.Context(), employeeID, amount, req.Reason, actor.ID)
	if err != nil {
		switch {
		case ledger.IsClientError(err):
			writeError(w, http.StatusBadRequest, "Adjustment must be one of +1, -1, +0.5, -0.5", nil)
		case ledger.IsNotFound(err):
			writeError(w, http.StatusNotFound, "Employee not found", nil)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to apply adjustment", err)
		}
		return
	}

	newBalance, _ := result.NewBalance.Float64()
	applied, _ := result.Applied.Float64()
	writeJSON(w, http.StatusOK, AdjustLeaveResponse{
		Message:    "Leave balance adjusted for " + result.EmployeeName,
		NewBalance: newBalance,
		Adjustment: applied,
	})
}

// =============================================================================
// MISC
// =============================================================================

// Health is the liveness probe.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "hr-ledger"})
}

// =============================================================================
// HELPERS
// =============================================================================

// toEmployeeDTO enriches the profile with the current month's closing
// balance and this year's sick-day usage. A missing balance row reads as
// zero; it is not materialized by a GET.
func (h *Handler) toEmployeeDTO(r *http.Request, e ledger.Employee) EmployeeDTO {
	now := h.now().UTC()

	var current float64
	balance, err := h.Store.FindBalance(r.Context(), e.ID, now.Year(), int(now.Month()))
	if err != nil {
		h.Log.WithError(err).WithField("employee_id", e.ID).Warn("failed to read current balance")
	} else if balance != nil {
		current, _ = balance.ClosingBalance.Float64()
	}

	sick, err := h.Store.GetSickDays(r.Context(), e.ID, now.Year())
	if err != nil {
		h.Log.WithError(err).WithField("employee_id", e.ID).Warn("failed to read sick days")
	}

	initial, _ := e.InitialLeaveBalance.Float64()
	return EmployeeDTO{
		ID:                  e.ID,
		UserID:              e.UserID,
		FullName:            e.FullName,
		Email:               e.Email,
		Department:          string(e.Department),
		Position:            e.Position,
		HireDate:            e.HireDate.Format("2006-01-02"),
		PhoneNumber:         e.PhoneNumber,
		InitialLeaveBalance: initial,
		CurrentLeaveBalance: current,
		SickDaysUsed:        sick.Used(),
		SickDaysRemaining:   sick.Remaining(),
		CreatedAt:           e.CreatedAt.Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
