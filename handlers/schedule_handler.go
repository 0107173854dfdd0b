package handlers

import (
	"errors"
	"net/http"

	"github.com/courtside/league-system/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(scheduleService services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

type scheduleSeasonRequest struct {
	PlayerIDs   []int          `json:"player_ids"`
	WeekWindows map[int]string `json:"week_windows,omitempty"`
	Seed        *int64         `json:"seed,omitempty"`
}

// ScheduleSeason regenerates the tier's whole season. Prior matches and
// slates are replaced.
func (h *ScheduleHandler) ScheduleSeason(w http.ResponseWriter, r *http.Request) {
	tierID, err := getIDFromURL(r, "tierID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input scheduleSeasonRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.PlayerIDs) == 0 {
		badRequestResponse(w, r, errors.New("player_ids is required"))
		return
	}

	result, err := h.scheduleService.ScheduleSeason(r.Context(), services.ScheduleSeasonInput{
		TierID:      tierID,
		PlayerIDs:   input.PlayerIDs,
		WeekWindows: input.WeekWindows,
		Seed:        input.Seed,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScheduleHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	tierID, err := getIDFromURL(r, "tierID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	meta, err := h.scheduleService.GetMeta(r.Context(), tierID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"meta": meta}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScheduleHandler) ListSlates(w http.ResponseWriter, r *http.Request) {
	tierID, err := getIDFromURL(r, "tierID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	slates, err := h.scheduleService.ListSlates(r.Context(), tierID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"slates": slates}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
