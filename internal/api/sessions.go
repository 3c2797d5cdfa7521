package api

import (
	"net/http"
	"strconv"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/auth"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/question"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/service"

	"github.com/go-chi/chi/v5"
)

type AnswerRequest struct {
	StepID string         `json:"stepId" validate:"required"`
	Value  question.Value `json:"value"`
}

type NextRequest struct {
	Enforce bool `json:"enforce"`
}

type JumpRequest struct {
	SectionIndex *int `json:"sectionIndex" validate:"required,min=0"`
	StepIndex    *int `json:"stepIndex" validate:"required,min=0"`
}

type DoseTimeRequest struct {
	Hour   *int `json:"hour" validate:"required,min=0,max=23"`
	Minute *int `json:"minute" validate:"required,min=0,max=59"`
}

func (d Dependencies) getCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.Sessions.Catalog())
}

func (d Dependencies) createSession(w http.ResponseWriter, r *http.Request) {
	view, err := d.Sessions.Create(r.Context(), auth.GetOwner(r.Context()))
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (d Dependencies) getSession(w http.ResponseWriter, r *http.Request) {
	view, err := d.Sessions.Get(r.Context(), auth.GetOwner(r.Context()), chi.URLParam(r, "id"))
	d.writeView(w, view, err)
}

func (d Dependencies) discardSession(w http.ResponseWriter, r *http.Request) {
	if err := d.Sessions.Discard(r.Context(), auth.GetOwner(r.Context()), chi.URLParam(r, "id")); err != nil {
		d.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (d Dependencies) answerSession(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if !d.decodeJSON(w, r, &req, false) {
		return
	}
	view, err := d.Sessions.Answer(r.Context(), auth.GetOwner(r.Context()), chi.URLParam(r, "id"), req.StepID, req.Value)
	d.writeView(w, view, err)
}

// nextSession is permissive unless enforce is set in the query or body
func (d Dependencies) nextSession(w http.ResponseWriter, r *http.Request) {
	var req NextRequest
	if !d.decodeJSON(w, r, &req, true) {
		return
	}
	if q := r.URL.Query().Get("enforce"); q != "" {
		enforce, err := strconv.ParseBool(q)
		if err != nil {
			WriteError(w, http.StatusBadRequest, service.CodeInvalidInput, "enforce must be a boolean", d.Log)
			return
		}
		req.Enforce = req.Enforce || enforce
	}
	view, err := d.Sessions.Next(r.Context(), auth.GetOwner(r.Context()), chi.URLParam(r, "id"), req.Enforce)
	d.writeView(w, view, err)
}

func (d Dependencies) previousSession(w http.ResponseWriter, r *http.Request) {
	view, err := d.Sessions.Previous(r.Context(), auth.GetOwner(r.Context()), chi.URLParam(r, "id"))
	d.writeView(w, view, err)
}

func (d Dependencies) resetSession(w http.ResponseWriter, r *http.Request) {
	view, err := d.Sessions.Reset(r.Context(), auth.GetOwner(r.Context()), chi.URLParam(r, "id"))
	d.writeView(w, view, err)
}

func (d Dependencies) jumpSession(w http.ResponseWriter, r *http.Request) {
	var req JumpRequest
	if !d.decodeJSON(w, r, &req, false) {
		return
	}
	pos := question.Position{Section: *req.SectionIndex, Step: *req.StepIndex}
	view, err := d.Sessions.Jump(r.Context(), auth.GetOwner(r.Context()), chi.URLParam(r, "id"), pos)
	d.writeView(w, view, err)
}

func (d Dependencies) editDoseTime(w http.ResponseWriter, r *http.Request) {
	var req DoseTimeRequest
	if !d.decodeJSON(w, r, &req, false) {
		return
	}
	view, err := d.Sessions.EditDoseTime(r.Context(), auth.GetOwner(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "slotId"), *req.Hour, *req.Minute)
	d.writeView(w, view, err)
}

func (d Dependencies) completeSession(w http.ResponseWriter, r *http.Request) {
	med, err := d.Sessions.Complete(r.Context(), auth.GetOwner(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, med)
}

func (d Dependencies) writeView(w http.ResponseWriter, view service.View, err error) {
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
