package httpapi

import (
	"encoding/json"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/profile"
)

type ProfileHandler struct {
	profiles *profile.Service
	stores   profile.Stores
}

func NewProfileHandler(profiles *profile.Service, stores profile.Stores) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, stores: stores}
}

func (h *ProfileHandler) GetAddress(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "get address")
	if !ok {
		return
	}
	a, err := h.profiles.GetAddress(r.Context(), h.stores.AddressStoreFor(ident))
	if err != nil {
		handleError(w, "get address", err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (h *ProfileHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "create address")
	if !ok {
		return
	}
	var a domain.Address
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, "create address", "invalid JSON body")
		return
	}
	created, err := h.profiles.CreateAddress(r.Context(), h.stores.AddressStoreFor(ident), a)
	if err != nil {
		handleError(w, "create address", err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *ProfileHandler) EditAddress(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "edit address")
	if !ok {
		return
	}
	var a domain.Address
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, "edit address", "invalid JSON body")
		return
	}
	updated, err := h.profiles.EditAddress(r.Context(), h.stores.AddressStoreFor(ident), a)
	if err != nil {
		handleError(w, "edit address", err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *ProfileHandler) EditAddressPartial(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "edit address")
	if !ok {
		return
	}
	var patch profile.AddressPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "edit address", "invalid JSON body")
		return
	}
	updated, err := h.profiles.EditAddressPartial(r.Context(), h.stores.AddressStoreFor(ident), patch)
	if err != nil {
		handleError(w, "edit address", err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *ProfileHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "delete address")
	if !ok {
		return
	}
	if err := h.profiles.DeleteAddress(r.Context(), h.stores.AddressStoreFor(ident)); err != nil {
		handleError(w, "delete address", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ProfileHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "get person")
	if !ok {
		return
	}
	p, err := h.profiles.GetPerson(r.Context(), h.stores.PersonStoreFor(ident))
	if err != nil {
		handleError(w, "get person", err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "create person")
	if !ok {
		return
	}
	var p domain.Person
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "create person", "invalid JSON body")
		return
	}
	created, err := h.profiles.CreatePerson(r.Context(), h.stores.PersonStoreFor(ident), p)
	if err != nil {
		handleError(w, "create person", err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *ProfileHandler) EditPerson(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "edit person")
	if !ok {
		return
	}
	var p domain.Person
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "edit person", "invalid JSON body")
		return
	}
	updated, err := h.profiles.EditPerson(r.Context(), h.stores.PersonStoreFor(ident), p)
	if err != nil {
		handleError(w, "edit person", err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *ProfileHandler) EditPersonPartial(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "edit person")
	if !ok {
		return
	}
	var patch profile.PersonPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "edit person", "invalid JSON body")
		return
	}
	updated, err := h.profiles.EditPersonPartial(r.Context(), h.stores.PersonStoreFor(ident), patch)
	if err != nil {
		handleError(w, "edit person", err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *ProfileHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "delete person")
	if !ok {
		return
	}
	if err := h.profiles.DeletePerson(r.Context(), h.stores.PersonStoreFor(ident)); err != nil {
		handleError(w, "delete person", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
