package projects

import (
	"context"

	"github.com/dmitrijs2005/chartkeeper/internal/server/models"
)

// Repository persists chart projects. Every read and write is scoped to the
// owning user: a project that exists but belongs to someone else behaves
// exactly like one that does not exist.
type Repository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	List(ctx context.Context, userID string) ([]models.ProjectSummary, error)
	GetByID(ctx context.Context, userID string, id string) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) (*models.Project, error)
	Delete(ctx context.Context, userID string, id string) error
	SetFolder(ctx context.Context, userID string, id string, folderID string) error
	ListByFolder(ctx context.Context, userID string, folderID string) ([]models.ProjectSummary, error)
}
