package rest

import (
	"net/http"
	"property-service/internal/contextkeys"
	"property-service/internal/contracts"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"
	"property-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PropertyHandler обрабатывает /properties
type PropertyHandler struct {
	listUC    usecases_port.ListPropertiesUseCase
	mineUC    usecases_port.GetMyPropertiesUseCase
	detailsUC usecases_port.GetPropertyDetailsUseCase
	createUC  usecases_port.CreatePropertyUseCase
	updateUC  usecases_port.UpdatePropertyUseCase
	deleteUC  usecases_port.DeletePropertyUseCase
	limits    UploadLimits
}

func NewPropertyHandler(
	listUC usecases_port.ListPropertiesUseCase,
	mineUC usecases_port.GetMyPropertiesUseCase,
	detailsUC usecases_port.GetPropertyDetailsUseCase,
	createUC usecases_port.CreatePropertyUseCase,
	updateUC usecases_port.UpdatePropertyUseCase,
	deleteUC usecases_port.DeletePropertyUseCase,
	limits UploadLimits,
) *PropertyHandler {
	return &PropertyHandler{
		listUC:    listUC,
		mineUC:    mineUC,
		detailsUC: detailsUC,
		createUC:  createUC,
		updateUC:  updateUC,
		deleteUC:  deleteUC,
		limits:    limits,
	}
}

// ListProperties обрабатывает GET /properties
func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListProperties"})

	q := r.URL.Query()
	params := domain.SearchParams{
		Location: q.Get("location"),
		MinPrice: q.Get("minPrice"),
		MaxPrice: q.Get("maxPrice"),
		Type:     q.Get("type"),
		Bedrooms: q.Get("bedrooms"),
		SortBy:   q.Get("sortBy"),
		Page:     q.Get("page"),
		Limit:    q.Get("limit"),
	}

	page, err := h.listUC.Execute(r.Context(), params)
	if err != nil {
		writeDomainError(w, err, logger)
		return
	}

	RespondWithJSON(w, http.StatusOK, toPageResponse(*page))
}

// GetMyProperties обрабатывает GET /properties/my-properties
func (h *PropertyHandler) GetMyProperties(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetMyProperties"})

	userID, ok := contextkeys.UserIDFromContext(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthenticated, logger)
		return
	}

	props, err := h.mineUC.Execute(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err, logger)
		return
	}

	RespondWithJSON(w, http.StatusOK, toPropertyResponses(props))
}

// GetPropertyDetails обрабатывает GET /properties/{propertyID}
func (h *PropertyHandler) GetPropertyDetails(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetPropertyDetails"})

	id, err := propertyIDParam(r)
	if err != nil {
		writeDomainError(w, err, logger)
		return
	}

	details, err := h.detailsUC.Execute(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, logger)
		return
	}

	RespondWithJSON(w, http.StatusOK, toDetailsResponse(*details))
}

// CreateProperty обрабатывает POST /properties
func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateProperty"})

	userID, ok := contextkeys.UserIDFromContext(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthenticated, logger)
		return
	}

	req, err := parsePropertyRequest(w, r, h.limits)
	if err != nil {
		writeDomainError(w, err, logger)
		return
	}
	defer req.release()

	if err := contracts.ValidatePayload(contracts.CreatePropertyPayloadV1, req.fields); err != nil {
		writeDomainError(w, err, logger)
		return
	}

	created, err := h.createUC.Execute(r.Context(), userID, req.fields.toInput(), req.files)
	if err != nil {
		writeDomainError(w, err, logger)
		return
	}

	RespondWithJSON(w, http.StatusCreated, toPropertyResponse(*created))
}

// UpdateProperty обрабатывает PUT /properties/{propertyID}
func (h *PropertyHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UpdateProperty"})

	userID, ok := contextkeys.UserIDFromContext(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthenticated, logger)
		return
	}

	id, err := propertyIDParam(r)
	if err != nil {
		writeDomainError(w, err, logger)
		return
	}

	req, err := parsePropertyRequest(w, r, h.limits)
	if err != nil {
		writeDomainError(w, err, logger)
		return
	}
	defer req.release()

	if err := contracts.ValidatePayload(contracts.UpdatePropertyPayloadV1, req.fields); err != nil {
		writeDomainError(w, err, logger)
		return
	}

	updated, err := h.updateUC.Execute(r.Context(), userID, id, req.fields.toPatch(), req.files)
	if err != nil {
		writeDomainError(w, err, logger)
		return
	}

	RespondWithJSON(w, http.StatusOK, toPropertyResponse(*updated))
}

// DeleteProperty обрабатывает DELETE /properties/{propertyID}
func (h *PropertyHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "DeleteProperty"})

	userID, ok := contextkeys.UserIDFromContext(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthenticated, logger)
		return
	}

	id, err := propertyIDParam(r)
	if err != nil {
		writeDomainError(w, err, logger)
		return
	}

	if err := h.deleteUC.Execute(r.Context(), userID, id); err != nil {
		writeDomainError(w, err, logger)
		return
	}

	RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Property deleted"})
}

func propertyIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("id", "must be a valid UUID")
	}
	return id, nil
}
