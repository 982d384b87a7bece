package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/chartkeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type folderJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toFolderJSON(f *models.Folder) folderJSON {
	return folderJSON{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt}
}

func (h *Handler) createFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	folder, err := h.folders.Create(r.Context(), UserID(r.Context()), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFolderJSON(folder))
}

func (h *Handler) listFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folders.List(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]folderJSON, len(folders))
	for i := range folders {
		out[i] = toFolderJSON(&folders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) folderProjects(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.folders.Projects(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryJSON(summaries))
}
