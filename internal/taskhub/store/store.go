package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are methods so a Tx can hand out the same
// repos bound to the transaction, and nothing can open a transaction from
// inside one.
type Store interface {
	Users() Users
	VerificationTokens() VerificationTokens
	BackupCodes() BackupCodes
	MFASessions() MFASessions
	Workspaces() Workspaces
	Projects() Projects
	Tasks() Tasks

	ApplyMigrations(ctx context.Context) error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	// Inside fn use only the repos of tx: the sqlite driver has a single
	// connection and the outer store would block on it.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists when the email or name is taken.
	CreateUser(ctx context.Context, u domain.User) error

	MarkEmailVerified(ctx context.Context, userID string) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
	UpdateProfilePicture(ctx context.Context, userID string, key string) error

	// UpdateMFASecret stores a pending TOTP secret without enabling MFA.
	UpdateMFASecret(ctx context.Context, userID string, secret string) error

	// EnableMFA stamps mfa_enabled_at.
	EnableMFA(ctx context.Context, userID string, at time.Time) error

	// DisableMFA clears mfa_enabled_at and mfa_secret.
	DisableMFA(ctx context.Context, userID string) error
}

type VerificationTokens interface {
	CreateVerificationToken(ctx context.Context, t domain.VerificationToken) error

	// GetVerificationToken finds the row for (user, purpose, fingerprint),
	// expired or not.
	GetVerificationToken(ctx context.Context, userID string, purpose domain.TokenPurpose, tokenHash string) (domain.VerificationToken, error)

	// ListVerificationTokens returns every row for (user, purpose), newest first.
	ListVerificationTokens(ctx context.Context, userID string, purpose domain.TokenPurpose) ([]domain.VerificationToken, error)

	DeleteVerificationToken(ctx context.Context, id string) error

	// DeleteExpiredUserTokens removes rows for (user, purpose) that expired at or before now.
	DeleteExpiredUserTokens(ctx context.Context, userID string, purpose domain.TokenPurpose, now time.Time) error

	// DeleteExpiredVerificationTokens is housekeeping across all users.
	DeleteExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error)
}

type BackupCodes interface {
	// CreateBackupCode stores a backup code hash for a user.
	CreateBackupCode(ctx context.Context, userID string, codeHash string) error

	// VerifyBackupCode checks if a backup code hash exists for a user.
	VerifyBackupCode(ctx context.Context, userID string, codeHash string) (bool, error)

	// DeleteBackupCode removes a specific backup code after use.
	DeleteBackupCode(ctx context.Context, userID string, codeHash string) error

	DeleteAllBackupCodes(ctx context.Context, userID string) error
	CountUserBackupCodes(ctx context.Context, userID string) (int, error)
}

// MFASessions holds pending two-factor logins keyed by challenge fingerprint.
type MFASessions interface {
	CreateMFASession(ctx context.Context, m domain.MFASession) error
	GetMFASession(ctx context.Context, id string) (domain.MFASession, error)

	// IncrementMFASessionAttempts records a wrong code and returns the new count.
	IncrementMFASessionAttempts(ctx context.Context, id string) (int, error)

	// DeleteMFASession returns ErrNotFound when the row is already gone.
	DeleteMFASession(ctx context.Context, id string) error
	DeleteExpiredMFASessions(ctx context.Context, now time.Time) (int64, error)
}

type Workspaces interface {
	CreateWorkspace(ctx context.Context, w domain.Workspace) error
	GetWorkspaceByID(ctx context.Context, id string) (domain.Workspace, error)

	// ListWorkspacesForUser returns workspaces userID is a member of, newest first.
	ListWorkspacesForUser(ctx context.Context, userID string) ([]domain.Workspace, error)

	// AddWorkspaceMember returns ErrAlreadyExists for a duplicate membership.
	AddWorkspaceMember(ctx context.Context, m domain.WorkspaceMember) error
	GetWorkspaceMember(ctx context.Context, workspaceID, userID string) (domain.WorkspaceMember, error)

	// ListWorkspaceMembers joins users for name and email, oldest first.
	ListWorkspaceMembers(ctx context.Context, workspaceID string) ([]domain.WorkspaceMember, error)

	UpdateWorkspaceMemberRole(ctx context.Context, workspaceID, userID string, role domain.WorkspaceRole) error
	RemoveWorkspaceMember(ctx context.Context, workspaceID, userID string) error
}

type Projects interface {
	CreateProject(ctx context.Context, p domain.Project) error
	GetProjectByID(ctx context.Context, id string) (domain.Project, error)

	// ListProjectsByWorkspace returns projects newest first.
	ListProjectsByWorkspace(ctx context.Context, workspaceID string) ([]domain.Project, error)

	AddProjectMember(ctx context.Context, m domain.ProjectMember) error
	GetProjectMember(ctx context.Context, projectID, userID string) (domain.ProjectMember, error)
	ListProjectMembers(ctx context.Context, projectID string) ([]domain.ProjectMember, error)

	// RemoveWorkspaceProjectMemberships drops userID from every project of
	// workspaceID and returns how many memberships were removed.
	RemoveWorkspaceProjectMemberships(ctx context.Context, workspaceID, userID string) (int64, error)

	UpdateProjectProgress(ctx context.Context, projectID string, progress int, status domain.ProjectStatus) error
}

type Tasks interface {
	// CreateTask inserts the task and its assignees.
	CreateTask(ctx context.Context, t domain.Task) error
	GetTaskByID(ctx context.Context, id string) (domain.Task, error)

	// ListTasksByProject returns tasks newest first, with assignees.
	ListTasksByProject(ctx context.Context, projectID string, includeArchived bool) ([]domain.Task, error)

	UpdateTaskStatus(ctx context.Context, taskID string, status domain.TaskStatus) error
	ArchiveTask(ctx context.Context, taskID string) error
}
