package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/togglekeep/togglekeep/internal/services"
)

// FeatureFlagsHandler exposes flag CRUD and toggle operations. All
// mutations are audited by the service layer.
type FeatureFlagsHandler struct {
	flagService *services.FlagService
}

func NewFeatureFlagsHandler(flagService *services.FlagService) *FeatureFlagsHandler {
	return &FeatureFlagsHandler{flagService: flagService}
}

// List returns all flags, or only the active flags carrying ?tag=.
func (h *FeatureFlagsHandler) List(c *gin.Context) {
	flags, err := h.flagService.GetAll(c.Query("tag"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list feature flags"})
		return
	}
	c.JSON(http.StatusOK, flags)
}

func (h *FeatureFlagsHandler) Get(c *gin.Context) {
	flag, err := h.flagService.GetByKey(c.Param("key"))
	if err != nil {
		flagError(c, err)
		return
	}
	c.JSON(http.StatusOK, flag)
}

func (h *FeatureFlagsHandler) Create(c *gin.Context) {
	var input services.FlagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flag, err := h.flagService.Create(c.Request.Context(), input)
	if err != nil {
		flagError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flag)
}

func (h *FeatureFlagsHandler) Update(c *gin.Context) {
	var input services.FlagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flag, err := h.flagService.Update(c.Request.Context(), c.Param("key"), input)
	if err != nil {
		flagError(c, err)
		return
	}
	c.JSON(http.StatusOK, flag)
}

func (h *FeatureFlagsHandler) Delete(c *gin.Context) {
	flag, err := h.flagService.Delete(c.Request.Context(), c.Param("key"))
	if err != nil {
		flagError(c, err)
		return
	}
	c.JSON(http.StatusOK, flag)
}

// Toggle sets a single flag's value: PUT /feature-flags/toggle/:key?value=true
func (h *FeatureFlagsHandler) Toggle(c *gin.Context) {
	value, ok := boolQuery(c, "value")
	if !ok {
		return
	}

	flag, err := h.flagService.Toggle(c.Request.Context(), c.Param("key"), value)
	if err != nil {
		flagError(c, err)
		return
	}
	c.JSON(http.StatusOK, flag)
}

// ToggleByTag sets every active flag carrying the tag:
// PUT /feature-flags/toggle/tag?tag=checkout&value=false
func (h *FeatureFlagsHandler) ToggleByTag(c *gin.Context) {
	tag := c.Query("tag")
	if tag == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tag is required"})
		return
	}
	value, ok := boolQuery(c, "value")
	if !ok {
		return
	}

	flags, err := h.flagService.ToggleByTag(c.Request.Context(), tag, value)
	if err != nil {
		flagError(c, err)
		return
	}
	c.JSON(http.StatusOK, flags)
}

func boolQuery(c *gin.Context, name string) (bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " is required"})
		return false, false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return false, false
	}
	return value, true
}

// flagError maps service errors onto HTTP statuses. An unresolvable
// audit actor is an internal invariant violation, not a caller error.
func flagError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrFlagNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrFlagKeyTaken), errors.Is(err, services.ErrFlagInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrActorNotFound):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "audit attribution failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
