package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/chartkeeper/internal/common"
	"github.com/dmitrijs2005/chartkeeper/internal/server/filestore"
	"github.com/dmitrijs2005/chartkeeper/internal/server/models"
	"github.com/dmitrijs2005/chartkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/chartkeeper/internal/server/sheet"
	"github.com/google/uuid"
)

// CreateProjectRequest is a fully buffered upload plus its chart settings.
type CreateProjectRequest struct {
	ProjectName string
	ChartType   string
	XAxis       string
	YAxis       string
	BubbleSize  string
	FileName    string
	Content     []byte
}

// UpdateProjectRequest carries optional project changes. Empty fields keep
// their current values; a nil ChartConfig keeps the current axes.
type UpdateProjectRequest struct {
	ProjectName string
	ChartType   string
	ChartConfig *models.ChartConfig
}

// ProjectService owns the chart-project lifecycle: ingestion of uploads,
// CRUD, duplication and folder placement. The original upload is kept in a
// FileStore; the derived datasets live in the project row.
type ProjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	files       filestore.FileStore
}

func NewProjectService(db *sql.DB, m repomanager.RepositoryManager, files filestore.FileStore) *ProjectService {
	return &ProjectService{db: db, repomanager: m, files: files}
}

// checkID rejects path parameters that cannot be a uuid before they reach
// the database, so a garbage id reads as a missing row instead of a driver
// error.
func checkID(id string) error {
	if uuid.Validate(id) != nil {
		return common.ErrorNotFound
	}
	return nil
}

// Create parses the upload first, so a malformed file never leaves an
// orphaned object in the file store.
func (s *ProjectService) Create(ctx context.Context, userID string, req CreateProjectRequest) (*models.Project, error) {

	if req.ProjectName == "" || req.ChartType == "" || len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: projectName, chartType and excelFile are required", common.ErrorValidation)
	}
	if !models.ValidChartType(req.ChartType) {
		return nil, fmt.Errorf("%w: unknown chart type %q", common.ErrorValidation, req.ChartType)
	}

	res, err := sheet.Ingest(req.Content, req.FileName, req.ChartType, models.ChartConfig{
		XAxis:      req.XAxis,
		YAxis:      req.YAxis,
		BubbleSize: req.BubbleSize,
	})
	if err != nil {
		return nil, err
	}

	path, err := s.files.Save(ctx, req.FileName, req.Content)
	if err != nil {
		return nil, fmt.Errorf("error storing upload: %w", err)
	}

	project := &models.Project{
		UserID:           userID,
		ProjectName:      req.ProjectName,
		ChartType:        req.ChartType,
		FilePath:         path,
		OriginalFileName: req.FileName,
		Data:             res.Series,
		PreviewData:      res.Preview,
		ChartConfig:      res.Config,
	}

	repo := s.repomanager.Projects(s.db)
	return repo.Create(ctx, project)
}

func (s *ProjectService) List(ctx context.Context, userID string) ([]models.ProjectSummary, error) {
	repo := s.repomanager.Projects(s.db)
	return repo.List(ctx, userID)
}

func (s *ProjectService) Get(ctx context.Context, userID, id string) (*models.Project, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	repo := s.repomanager.Projects(s.db)
	return repo.GetByID(ctx, userID, id)
}

// Preview returns the stored sample rows: the first few full-width records
// of the original upload, before any axis projection.
func (s *ProjectService) Preview(ctx context.Context, userID, id string) ([]models.Record, error) {
	project, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return project.PreviewData, nil
}

// Update overlays the non-empty fields of req onto the stored project.
// Changing the chart type or config does not re-derive the chart series:
// the data was projected at upload time.
func (s *ProjectService) Update(ctx context.Context, userID, id string, req UpdateProjectRequest) (*models.Project, error) {

	if err := checkID(id); err != nil {
		return nil, err
	}
	if req.ChartType != "" && !models.ValidChartType(req.ChartType) {
		return nil, fmt.Errorf("%w: unknown chart type %q", common.ErrorValidation, req.ChartType)
	}

	repo := s.repomanager.Projects(s.db)

	project, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.ProjectName != "" {
		project.ProjectName = req.ProjectName
	}
	if req.ChartType != "" {
		project.ChartType = req.ChartType
	}
	if req.ChartConfig != nil {
		project.ChartConfig = *req.ChartConfig
	}

	return repo.Update(ctx, project)
}

// Delete removes the project row and then its backing file. A file that is
// already gone is not an error.
func (s *ProjectService) Delete(ctx context.Context, userID, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	repo := s.repomanager.Projects(s.db)

	project, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	return s.files.Delete(ctx, project.FilePath)
}

func cloneRecords(records []models.Record) []models.Record {
	if records == nil {
		return nil
	}
	out := make([]models.Record, len(records))
	for i, rec := range records {
		c := make(models.Record, len(rec))
		for k, v := range rec {
			c[k] = v
		}
		out[i] = c
	}
	return out
}

// Duplicate deep-copies a project's datasets and config. The backing file is
// byte-copied under a new key when it still exists; a missing file is simply
// shared by path and never fails the duplication. The duplicate always lands
// at the top level, not in the source's folder.
func (s *ProjectService) Duplicate(ctx context.Context, userID, id string) (*models.Project, error) {

	if err := checkID(id); err != nil {
		return nil, err
	}

	repo := s.repomanager.Projects(s.db)

	src, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	path := src.FilePath
	if s.files.Exists(ctx, src.FilePath) {
		copied, err := s.files.Copy(ctx, src.FilePath)
		if err != nil {
			return nil, fmt.Errorf("error copying upload: %w", err)
		}
		path = copied
	}

	dup := &models.Project{
		UserID:           userID,
		ProjectName:      src.ProjectName + " (Copy)",
		ChartType:        src.ChartType,
		FilePath:         path,
		OriginalFileName: "Copy of " + src.OriginalFileName,
		Data:             cloneRecords(src.Data),
		PreviewData:      cloneRecords(src.PreviewData),
		ChartConfig:      src.ChartConfig,
	}

	return repo.Create(ctx, dup)
}

// Move places the project into a folder, or back to the top level when
// folderID is empty. The folder reference is deliberately loose: it is not
// checked against the folders table.
func (s *ProjectService) Move(ctx context.Context, userID, id, folderID string) error {
	if err := checkID(id); err != nil {
		return err
	}
	repo := s.repomanager.Projects(s.db)
	return repo.SetFolder(ctx, userID, id, folderID)
}
