package folders

import (
	"context"

	"github.com/dmitrijs2005/chartkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	List(ctx context.Context, userID string) ([]models.Folder, error)
	GetByID(ctx context.Context, userID string, id string) (*models.Folder, error)
}
