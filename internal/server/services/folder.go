package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/chartkeeper/internal/common"
	"github.com/dmitrijs2005/chartkeeper/internal/server/models"
	"github.com/dmitrijs2005/chartkeeper/internal/server/repositories/repomanager"
)

// FolderService manages the flat folder namespace projects can be grouped
// under. There is no folder deletion: moved-out projects keep working and a
// folder with a dangling reference is harmless.
type FolderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFolderService(db *sql.DB, m repomanager.RepositoryManager) *FolderService {
	return &FolderService{db: db, repomanager: m}
}

func (s *FolderService) Create(ctx context.Context, userID, name string) (*models.Folder, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: folder name is required", common.ErrorValidation)
	}
	repo := s.repomanager.Folders(s.db)
	return repo.Create(ctx, &models.Folder{UserID: userID, Name: name})
}

func (s *FolderService) List(ctx context.Context, userID string) ([]models.Folder, error) {
	repo := s.repomanager.Folders(s.db)
	return repo.List(ctx, userID)
}

// Projects lists the projects filed under one folder, newest first. The
// folder itself must exist and belong to the caller; a foreign or missing
// folder reads as not found.
func (s *FolderService) Projects(ctx context.Context, userID, folderID string) ([]models.ProjectSummary, error) {
	if err := checkID(folderID); err != nil {
		return nil, err
	}

	if _, err := s.repomanager.Folders(s.db).GetByID(ctx, userID, folderID); err != nil {
		return nil, err
	}

	repo := s.repomanager.Projects(s.db)
	return repo.ListByFolder(ctx, userID, folderID)
}
