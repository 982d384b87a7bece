package projects

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chartkeeper/internal/common"
	"github.com/dmitrijs2005/chartkeeper/internal/dbx"
	"github.com/dmitrijs2005/chartkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {

	data, err := json.Marshal(project.Data)
	if err != nil {
		return nil, fmt.Errorf("encoding data: %w", err)
	}
	preview, err := json.Marshal(project.PreviewData)
	if err != nil {
		return nil, fmt.Errorf("encoding preview: %w", err)
	}
	config, err := json.Marshal(project.ChartConfig)
	if err != nil {
		return nil, fmt.Errorf("encoding chart config: %w", err)
	}

	query :=
		`INSERT INTO projects (user_id, project_name, chart_type, file_path, original_file_name,
		                       data, preview_data, chart_config, folder_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))
		 RETURNING id, created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		project.UserID, project.ProjectName, project.ChartType,
		project.FilePath, project.OriginalFileName,
		data, preview, config, project.FolderID).
		Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

const summaryQuery =
	`SELECT id, project_name, chart_type, original_file_name, created_at, updated_at
	 FROM projects
	 WHERE user_id = $1`

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.ProjectSummary, error) {
	query := summaryQuery + ` ORDER BY created_at DESC`
	return r.listSummaries(ctx, query, userID)
}

func (r *PostgresRepository) ListByFolder(ctx context.Context, userID string, folderID string) ([]models.ProjectSummary, error) {
	query := summaryQuery + ` AND folder_id = $2 ORDER BY created_at DESC`
	return r.listSummaries(ctx, query, userID, folderID)
}

func (r *PostgresRepository) listSummaries(ctx context.Context, query string, args ...any) ([]models.ProjectSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.ProjectSummary{}
	for rows.Next() {
		var s models.ProjectSummary
		err := rows.Scan(&s.ID, &s.ProjectName, &s.ChartType,
			&s.OriginalFileName, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID string, id string) (*models.Project, error) {

	query :=
		`SELECT id, user_id, project_name, chart_type, file_path, original_file_name,
		        data, preview_data, chart_config, COALESCE(folder_id, ''), created_at, updated_at
		 FROM projects
		 WHERE user_id = $1 AND id = $2
		 `

	project := &models.Project{}
	var data, preview, config []byte
	err := r.db.QueryRowContext(ctx, query, userID, id).Scan(
		&project.ID, &project.UserID, &project.ProjectName, &project.ChartType,
		&project.FilePath, &project.OriginalFileName,
		&data, &preview, &config, &project.FolderID,
		&project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(data, &project.Data); err != nil {
		return nil, fmt.Errorf("decoding data: %w", err)
	}
	if err := json.Unmarshal(preview, &project.PreviewData); err != nil {
		return nil, fmt.Errorf("decoding preview: %w", err)
	}
	if err := json.Unmarshal(config, &project.ChartConfig); err != nil {
		return nil, fmt.Errorf("decoding chart config: %w", err)
	}

	return project, nil
}

func (r *PostgresRepository) Update(ctx context.Context, project *models.Project) (*models.Project, error) {

	config, err := json.Marshal(project.ChartConfig)
	if err != nil {
		return nil, fmt.Errorf("encoding chart config: %w", err)
	}

	query :=
		`UPDATE projects SET project_name = $3, chart_type = $4, chart_config = $5, updated_at = now()
		 WHERE user_id = $1 AND id = $2
		 RETURNING updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		project.UserID, project.ID, project.ProjectName, project.ChartType, config).
		Scan(&project.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, id string) error {

	query := `DELETE FROM projects WHERE user_id = $1 AND id = $2`

	res, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) SetFolder(ctx context.Context, userID string, id string, folderID string) error {

	query :=
		`UPDATE projects SET folder_id = NULLIF($3, ''), updated_at = now()
		 WHERE user_id = $1 AND id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, userID, id, folderID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}
