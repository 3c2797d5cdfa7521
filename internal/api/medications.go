package api

import (
	"net/http"
	"strconv"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"

	"github.com/go-chi/chi/v5"
)

type StatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type BatchDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// listMedications filters by one of q, patient or active, in that order
func (d Dependencies) listMedications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	active, _ := strconv.ParseBool(query.Get("active"))

	var (
		meds []model.Medication
		err  error
	)
	switch {
	case query.Get("q") != "":
		meds, err = d.Meds.Search(r.Context(), query.Get("q"))
	case query.Get("patient") != "":
		meds, err = d.Meds.ListByPatient(r.Context(), query.Get("patient"))
	case active:
		meds, err = d.Meds.Active(r.Context())
	default:
		meds, err = d.Meds.List(r.Context())
	}
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"medications": meds,
		"count":       len(meds),
	})
}

func (d Dependencies) createMedication(w http.ResponseWriter, r *http.Request) {
	var med model.Medication
	if !d.decodeBody(w, r, &med, false) {
		return
	}
	if err := d.Meds.Save(r.Context(), &med); err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, med)
}

func (d Dependencies) getMedication(w http.ResponseWriter, r *http.Request) {
	med, err := d.Meds.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, med)
}

func (d Dependencies) replaceMedication(w http.ResponseWriter, r *http.Request) {
	var med model.Medication
	if !d.decodeBody(w, r, &med, false) {
		return
	}
	if err := d.Meds.Replace(r.Context(), chi.URLParam(r, "id"), &med); err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, med)
}

func (d Dependencies) deleteMedication(w http.ResponseWriter, r *http.Request) {
	if err := d.Meds.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		d.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (d Dependencies) setMedicationStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !d.decodeJSON(w, r, &req, false) {
		return
	}
	med, err := d.Meds.SetActive(r.Context(), chi.URLParam(r, "id"), *req.IsActive)
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, med)
}

func (d Dependencies) batchDeleteMedications(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if !d.decodeJSON(w, r, &req, false) {
		return
	}
	n, err := d.Meds.DeleteMany(r.Context(), req.IDs)
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// sweepMedications marks expired records now, or with ?async=true
// hands the sweep to the job queue
func (d Dependencies) sweepMedications(w http.ResponseWriter, r *http.Request) {
	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		if err := d.Meds.EnqueueSweep("api"); err != nil {
			d.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]bool{"enqueued": true})
		return
	}

	n, err := d.Meds.MarkExpired(r.Context())
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"expired": n})
}

func (d Dependencies) clearMedications(w http.ResponseWriter, r *http.Request) {
	if err := d.Meds.Clear(r.Context()); err != nil {
		d.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (d Dependencies) listPatients(w http.ResponseWriter, r *http.Request) {
	groups, err := d.Meds.Groups(r.Context())
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (d Dependencies) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := d.Meds.Stats(r.Context())
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

