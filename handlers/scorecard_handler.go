package handlers

import (
	"net/http"

	"github.com/courtside/league-system/middleware"
	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/services"
)

type ScorecardHandler struct {
	scorecardService services.ScorecardService
}

func NewScorecardHandler(scorecardService services.ScorecardService) *ScorecardHandler {
	return &ScorecardHandler{scorecardService: scorecardService}
}

type submitScorecardRequest struct {
	Sets []models.SetScore `json:"sets"`
}

func (h *ScorecardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	var input submitScorecardRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	card, err := h.scorecardService.Submit(r.Context(), matchID, playerID, input.Sets)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"scorecard": card}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScorecardHandler) Approve(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	card, err := h.scorecardService.Approve(r.Context(), matchID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"scorecard": card}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScorecardHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	card, err := h.scorecardService.GetLatest(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"scorecard": card}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
