package services

import (
	"context"
	"database/sql"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/chartkeeper/internal/dbx"
	"github.com/dmitrijs2005/chartkeeper/internal/server/models"
	foldersrepo "github.com/dmitrijs2005/chartkeeper/internal/server/repositories/folders"
	projectsrepo "github.com/dmitrijs2005/chartkeeper/internal/server/repositories/projects"
	usersrepo "github.com/dmitrijs2005/chartkeeper/internal/server/repositories/users"
	"testing"
)

// --- shared fakes ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error

	updatedIn *models.User
	updateErr error

	passwordHashSet string
	passwordErr     error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = "u-new"
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updatedIn = u
	return u, nil
}

func (f *fakeUsersRepo) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	if f.passwordErr != nil {
		return f.passwordErr
	}
	f.passwordHashSet = hash
	return nil
}

type fakeProjectsRepo struct {
	createdIn *models.Project
	createErr error

	getOut *models.Project
	getErr error

	listOut []models.ProjectSummary
	listErr error

	updatedIn *models.Project
	updateErr error

	deletedID string
	deleteErr error

	folderSet string
	folderErr error
}

func (f *fakeProjectsRepo) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdIn = p
	p.ID = "p-new"
	return p, nil
}

func (f *fakeProjectsRepo) List(ctx context.Context, userID string) ([]models.ProjectSummary, error) {
	return f.listOut, f.listErr
}

func (f *fakeProjectsRepo) GetByID(ctx context.Context, userID, id string) (*models.Project, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeProjectsRepo) Update(ctx context.Context, p *models.Project) (*models.Project, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updatedIn = p
	return p, nil
}

func (f *fakeProjectsRepo) Delete(ctx context.Context, userID, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = id
	return nil
}

func (f *fakeProjectsRepo) SetFolder(ctx context.Context, userID, id, folderID string) error {
	if f.folderErr != nil {
		return f.folderErr
	}
	f.folderSet = folderID
	return nil
}

func (f *fakeProjectsRepo) ListByFolder(ctx context.Context, userID, folderID string) ([]models.ProjectSummary, error) {
	return f.listOut, f.listErr
}

type fakeFoldersRepo struct {
	createdIn *models.Folder
	createErr error

	listOut []models.Folder
	listErr error

	getOut *models.Folder
	getErr error
}

func (f *fakeFoldersRepo) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdIn = folder
	folder.ID = "f-new"
	return folder, nil
}

func (f *fakeFoldersRepo) List(ctx context.Context, userID string) ([]models.Folder, error) {
	return f.listOut, f.listErr
}

func (f *fakeFoldersRepo) GetByID(ctx context.Context, userID, id string) (*models.Folder, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakeProjectsRepo
	f *fakeFoldersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Projects(db dbx.DBTX) projectsrepo.Repository { return m.p }
func (m *fakeRepoManager) Folders(db dbx.DBTX) foldersrepo.Repository   { return m.f }

type fakeFileStore struct {
	savedName string
	saveOut   string
	saveErr   error

	copyOut string
	copyErr error

	deleted   []string
	deleteErr error

	exists bool
}

func (f *fakeFileStore) Save(ctx context.Context, originalName string, data []byte) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.savedName = originalName
	return f.saveOut, nil
}

func (f *fakeFileStore) Copy(ctx context.Context, path string) (string, error) {
	if f.copyErr != nil {
		return "", f.copyErr
	}
	return f.copyOut, nil
}

func (f *fakeFileStore) Delete(ctx context.Context, path string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeFileStore) Exists(ctx context.Context, path string) bool {
	return f.exists
}
