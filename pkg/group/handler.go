package group

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jivetime/jivetime/internal/rest"
)

type GroupDTO struct {
	Id        int       `json:"id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Create godoc
// @Summary Create an event group
// @Tags Group
// @Accept json
// @Produce json
// @Success 201 {object} GroupDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/group [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto GroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), fromDTO(dto))
	if err != nil {
		if errors.Is(err, ErrInvalidGroup) || errors.Is(err, ErrInvalidTimezone) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid event group", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// List godoc
// @Summary List event groups
// @Tags Group
// @Produce json
// @Success 200 {array} GroupDTO
// @Router /api/group [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]GroupDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, toDTO(g))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Get returns the group resolved by Middleware.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := Current(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusNotFound, "Event group not found", "")
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(g))
}

func toDTO(g Group) GroupDTO {
	return GroupDTO{Id: g.Id, Name: g.Name, Timezone: g.Timezone, CreatedAt: g.CreatedAt}
}

func fromDTO(dto GroupDTO) Group {
	return Group{Id: dto.Id, Name: dto.Name, Timezone: dto.Timezone}
}
