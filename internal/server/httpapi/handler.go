// Package httpapi exposes the ChartKeeper API over HTTP/JSON: chi routing,
// bearer-token auth, multipart uploads and a uniform error envelope.
package httpapi

import (
	"context"

	"github.com/dmitrijs2005/chartkeeper/internal/logging"
	"github.com/dmitrijs2005/chartkeeper/internal/server/models"
	"github.com/dmitrijs2005/chartkeeper/internal/server/services"
)

// UserService is the slice of the user service the HTTP layer depends on.
type UserService interface {
	Signup(ctx context.Context, req services.SignupRequest) (*models.User, string, error)
	Login(ctx context.Context, login, password string) (*models.User, string, error)
	RecoveryQuestion(ctx context.Context, login string) (string, error)
	CheckUser(ctx context.Context, email string) (bool, string, error)
	VerifyAnswer(ctx context.Context, login, answer string) error
	ResetPassword(ctx context.Context, login, answer, newPassword, confirm string) error
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, upd services.ProfileUpdate) (*models.User, error)
}

// ProjectService is the slice of the project service the HTTP layer depends on.
type ProjectService interface {
	Create(ctx context.Context, userID string, req services.CreateProjectRequest) (*models.Project, error)
	List(ctx context.Context, userID string) ([]models.ProjectSummary, error)
	Get(ctx context.Context, userID, id string) (*models.Project, error)
	Preview(ctx context.Context, userID, id string) ([]models.Record, error)
	Update(ctx context.Context, userID, id string, req services.UpdateProjectRequest) (*models.Project, error)
	Delete(ctx context.Context, userID, id string) error
	Duplicate(ctx context.Context, userID, id string) (*models.Project, error)
	Move(ctx context.Context, userID, id, folderID string) error
}

// FolderService is the slice of the folder service the HTTP layer depends on.
type FolderService interface {
	Create(ctx context.Context, userID, name string) (*models.Folder, error)
	List(ctx context.Context, userID string) ([]models.Folder, error)
	Projects(ctx context.Context, userID, folderID string) ([]models.ProjectSummary, error)
}

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	users         UserService
	projects      ProjectService
	folders       FolderService
	maxUploadSize int64
	logger        logging.Logger
}

func NewHandler(users UserService, projects ProjectService, folders FolderService,
	maxUploadSize int64, logger logging.Logger) *Handler {
	return &Handler{
		users:         users,
		projects:      projects,
		folders:       folders,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}
