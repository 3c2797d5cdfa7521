package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (d Dependencies) exportMedications(w http.ResponseWriter, r *http.Request) {
	data, name, err := d.Meds.Export(r.Context())
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (d Dependencies) importMedications(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, http.StatusRequestEntityTooLarge, "invalid_request", "Import file is too large", d.Log)
		return
	}
	result, err := d.Meds.Import(r.Context(), data)
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (d Dependencies) archiveExport(w http.ResponseWriter, r *http.Request) {
	obj, err := d.Meds.Archive(r.Context())
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, obj)
}

func (d Dependencies) listArchives(w http.ResponseWriter, r *http.Request) {
	objects, err := d.Meds.ListArchives(r.Context())
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"exports": objects})
}

func (d Dependencies) getArchive(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rc, err := d.Meds.OpenArchive(r.Context(), name)
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := io.Copy(w, rc); err != nil {
		d.Log.Warn("Failed to stream export", zap.String("name", name), zap.Error(err))
	}
}
