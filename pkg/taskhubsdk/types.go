package taskhubsdk

import "time"

// ============================================================================
// Auth
// ============================================================================

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3" example:"Ana"`
	Email    string `json:"email" validate:"required,email" example:"ana@x.com"`
	Password string `json:"password" validate:"required,min=8" example:"password123"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse covers the three login outcomes: a session (Token + User),
// a two-factor challenge (MFARequired + MFAToken), or a resent verification
// email (Message, HTTP 201).
type LoginResponse struct {
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	User      *User      `json:"user,omitempty"`

	MFARequired bool   `json:"mfaRequired,omitempty"`
	MFAToken    string `json:"mfaToken,omitempty"`

	Message string `json:"message,omitempty"`

	// VerificationResent is set by the client when the server answered 201.
	VerificationResent bool `json:"-"`
}

type MFALoginRequest struct {
	MFAToken string `json:"mfaToken" validate:"required"`
	Code     string `json:"code" validate:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,min=8"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Users
// ============================================================================

// User is the sanitized account record. It never carries the password hash
// or the TOTP secret.
type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	ProfilePicture  string     `json:"profilePicture"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	MFAEnabled      bool       `json:"mfaEnabled"`
	LastLogin       *time.Time `json:"lastLogin"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type AvatarUploadRequest struct {
	ContentType string `json:"contentType" validate:"required,oneof=image/png image/jpeg image/webp image/gif"`
}

type AvatarUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ============================================================================
// MFA
// ============================================================================

type TOTPEnrollResponse struct {
	Secret  string `json:"secret" example:"JBSWY3DPEHPK3PXP"`
	QRCode  string `json:"qrCode" example:"otpauth://totp/TaskHub:ana@x.com?secret=JBSWY3DPEHPK3PXP&issuer=TaskHub"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

// TOTPCodeRequest carries a 6-digit code for verify, regenerate and remove.
type TOTPCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

type BackupCodesResponse struct {
	Codes []string `json:"codes"`
}

// ============================================================================
// Workspaces
// ============================================================================

type CreateWorkspaceRequest struct {
	Name        string `json:"name" validate:"required,min=3"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"required,min=3"`
}

type Workspace struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Color       string            `json:"color"`
	OwnerID     string            `json:"ownerId"`
	Members     []WorkspaceMember `json:"members,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type WorkspaceMember struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type AddMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin member viewer"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member viewer"`
}

// ============================================================================
// Projects & tasks
// ============================================================================

type ProjectMemberInput struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=manager contributor viewer"`
}

type CreateProjectRequest struct {
	Title       string               `json:"title" validate:"required,min=3"`
	Description string               `json:"description"`
	Status      string               `json:"status"`
	StartDate   *time.Time           `json:"startDate"`
	DueDate     *time.Time           `json:"dueDate"`
	Tags        string               `json:"tags" example:"backend, q3"`
	Members     []ProjectMemberInput `json:"members" validate:"dive"`
}

type Project struct {
	ID          string          `json:"id"`
	WorkspaceID string          `json:"workspaceId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	StartDate   *time.Time      `json:"startDate"`
	DueDate     *time.Time      `json:"dueDate"`
	Progress    int             `json:"progress"`
	Tags        []string        `json:"tags"`
	CreatedBy   string          `json:"createdBy"`
	Members     []ProjectMember `json:"members,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ProjectMember struct {
	UserID   string    `json:"userId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Assignees   []string   `json:"assignees"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Assignees   []string   `json:"assignees"`
	IsArchived  bool       `json:"isArchived"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type ProjectTasksResponse struct {
	Project Project `json:"project"`
	Tasks   []Task  `json:"tasks"`
}

// ============================================================================
// System
// ============================================================================

type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime,omitempty"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
