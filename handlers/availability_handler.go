package handlers

import (
	"net/http"

	"github.com/courtside/league-system/middleware"
	"github.com/courtside/league-system/services"
)

type AvailabilityHandler struct {
	availabilityService services.AvailabilityService
}

func NewAvailabilityHandler(availabilityService services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService}
}

type setAvailabilityRequest struct {
	Windows []string `json:"windows"`
}

// SetAvailability replaces the acting player's availability windows. An
// empty list means the player is open to any window.
func (h *AvailabilityHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	var input setAvailabilityRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	availability, err := h.availabilityService.Set(r.Context(), playerID, input.Windows)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"availability": availability}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	availability, err := h.availabilityService.Get(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"availability": availability}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
