package handler

import (
	"net/http"

	"course-manager/internal/model"
	"course-manager/internal/service"
)

type UserHandler struct {
	service       *service.UserService
	secureCookies bool
}

func NewUserHandler(service *service.UserService, secureCookies bool) *UserHandler {
	return &UserHandler{service: service, secureCookies: secureCookies}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.get(w, r, id)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.update(w, r, id)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "user deleted successfully", nil)
}

func (h *UserHandler) GetSelf(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.get(w, r, caller.UserID)
}

func (h *UserHandler) UpdateSelf(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.update(w, r, caller.UserID)
}

// DeleteSelf removes the caller's account and ends the session.
func (h *UserHandler) DeleteSelf(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), caller.UserID); err != nil {
		writeError(w, err)
		return
	}

	clearCookies(w, h.secureCookies)
	writeSuccess(w, http.StatusOK, "user deleted successfully", nil)
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request, id int64) {
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", user)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request, id int64) {
	var payload model.UpdateUserRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "user updated successfully", user)
}
