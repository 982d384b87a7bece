package httpapi

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/chartkeeper/internal/server/models"
	"github.com/dmitrijs2005/chartkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type projectJSON struct {
	ID               string             `json:"id"`
	ProjectName      string             `json:"projectName"`
	ChartType        string             `json:"chartType"`
	OriginalFileName string             `json:"originalFileName"`
	Data             []models.Record    `json:"data"`
	PreviewData      []models.Record    `json:"previewData"`
	ChartConfig      models.ChartConfig `json:"chartConfig"`
	FolderID         string             `json:"folderId,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

func toProjectJSON(p *models.Project) projectJSON {
	return projectJSON{
		ID:               p.ID,
		ProjectName:      p.ProjectName,
		ChartType:        p.ChartType,
		OriginalFileName: p.OriginalFileName,
		Data:             p.Data,
		PreviewData:      p.PreviewData,
		ChartConfig:      p.ChartConfig,
		FolderID:         p.FolderID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type summaryJSON struct {
	ID               string    `json:"id"`
	ProjectName      string    `json:"projectName"`
	ChartType        string    `json:"chartType"`
	OriginalFileName string    `json:"originalFileName"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toSummaryJSON(summaries []models.ProjectSummary) []summaryJSON {
	out := make([]summaryJSON, len(summaries))
	for i, s := range summaries {
		out[i] = summaryJSON{
			ID:               s.ID,
			ProjectName:      s.ProjectName,
			ChartType:        s.ChartType,
			OriginalFileName: s.OriginalFileName,
			CreatedAt:        s.CreatedAt,
			UpdatedAt:        s.UpdatedAt,
		}
	}
	return out
}

// uploadExtensions lists the spreadsheet formats accepted on upload.
var uploadExtensions = map[string]struct{}{
	".xlsx": {},
	".xls":  {},
	".csv":  {},
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeMessage(w, http.StatusBadRequest, "file too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("excelFile")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "excelFile is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := uploadExtensions[ext]; !ok {
		writeMessage(w, http.StatusBadRequest, "only .xlsx, .xls and .csv files are accepted")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "error reading upload")
		return
	}

	project, err := h.projects.Create(r.Context(), UserID(r.Context()), services.CreateProjectRequest{
		ProjectName: r.FormValue("projectName"),
		ChartType:   r.FormValue("chartType"),
		XAxis:       r.FormValue("xAxis"),
		YAxis:       r.FormValue("yAxis"),
		BubbleSize:  r.FormValue("bubbleSize"),
		FileName:    header.Filename,
		Content:     content,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectJSON(project))
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.projects.List(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryJSON(summaries))
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Get(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectJSON(project))
}

func (h *Handler) previewProject(w http.ResponseWriter, r *http.Request) {
	preview, err := h.projects.Preview(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preview": preview})
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectName string              `json:"projectName"`
		ChartType   string              `json:"chartType"`
		ChartConfig *models.ChartConfig `json:"chartConfig"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	project, err := h.projects.Update(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"),
		services.UpdateProjectRequest{
			ProjectName: req.ProjectName,
			ChartType:   req.ChartType,
			ChartConfig: req.ChartConfig,
		})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectJSON(project))
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.Delete(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "project deleted")
}

func (h *Handler) duplicateProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Duplicate(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectJSON(project))
}

func (h *Handler) moveProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FolderID string `json:"folderId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.projects.Move(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), req.FolderID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "project moved")
}
