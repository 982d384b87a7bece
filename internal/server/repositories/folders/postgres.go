package folders

import (
	"context"
	"database/sql"
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

func (r *PostgresRepository) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {

	query :=
		`INSERT INTO folders (user_id, name)
		 VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, folder.UserID, folder.Name).
		Scan(&folder.ID, &folder.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return folder, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.Folder, error) {

	query :=
		`SELECT id, user_id, name, created_at FROM folders
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Folder{}
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID string, id string) (*models.Folder, error) {

	query :=
		`SELECT id, user_id, name, created_at FROM folders
		 WHERE user_id = $1 AND id = $2
		 `

	folder := &models.Folder{}
	err := r.db.QueryRowContext(ctx, query, userID, id).
		Scan(&folder.ID, &folder.UserID, &folder.Name, &folder.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return folder, nil
}
