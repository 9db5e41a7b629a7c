package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/productlens/backend/internal/domain"
	"github.com/productlens/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	detection  *usecase.DetectionService
	background *usecase.BackgroundService
	navigation *usecase.NavigationTracker
	badges     *usecase.BadgeRegistry
	opinions   domain.OpinionsClient
}

// NewHandler creates a new HTTP handler
func NewHandler(
	detection *usecase.DetectionService,
	background *usecase.BackgroundService,
	navigation *usecase.NavigationTracker,
	badges *usecase.BadgeRegistry,
	opinions domain.OpinionsClient,
) *Handler {
	return &Handler{
		detection:  detection,
		background: background,
		navigation: navigation,
		badges:     badges,
		opinions:   opinions,
	}
}

// DetectRequest is a page posted by the content side. When HTML is empty the
// page is downloaded by the server.
type DetectRequest struct {
	URL   string `json:"url" binding:"required"`
	HTML  string `json:"html,omitempty"`
	TabID string `json:"tabId,omitempty"`
}

// BadgeResponse carries the rendered overlay and the state of its opinions action
type BadgeResponse struct {
	ID       string                 `json:"id"`
	HTML     string                 `json:"html"`
	State    string                 `json:"state"`
	Label    string                 `json:"label"`
	Opinions *domain.OpinionsResult `json:"opinions,omitempty"`
}

// DetectResponse is returned when a product is found
type DetectResponse struct {
	Product *domain.ProductRecord `json:"product"`
	Badge   BadgeResponse         `json:"badge"`
}

// NavigationRequest reports a DOM mutation batch observed in a tab
type NavigationRequest struct {
	TabID string `json:"tabId" binding:"required"`
	URL   string `json:"url" binding:"required"`
	HTML  string `json:"html,omitempty"`
}

// NavigationResponse reports whether detection ran and, on a product page, its result
type NavigationResponse struct {
	DetectionRan bool                  `json:"detectionRan"`
	Product      *domain.ProductRecord `json:"product,omitempty"`
	Badge        *BadgeResponse        `json:"badge,omitempty"`
}

// TabResponse describes what the background knows about a tab
type TabResponse struct {
	TabID     string                `json:"tabId"`
	Product   *domain.ProductRecord `json:"product"`
	Indicator *domain.Indicator     `json:"indicator,omitempty"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "productlens-backend",
		"version": "1.0.0",
	})
}

// DetectProduct runs the detection pipeline on a posted or fetched page
func (h *Handler) DetectProduct(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	var (
		detection *usecase.Detection
		err       error
	)
	if strings.TrimSpace(req.HTML) != "" {
		detection, err = h.detection.DetectHTML(c.Request.Context(), req.URL, req.TabID, req.HTML)
	} else {
		detection, err = h.detection.DetectURL(c.Request.Context(), req.URL, req.TabID)
	}
	if err != nil {
		h.writeDetectError(c, err)
		return
	}

	badge, err := h.publishBadge(detection.Badge)
	if err != nil {
		log.Printf("[HTTP] Badge render error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render badge"})
		return
	}

	c.JSON(http.StatusOK, DetectResponse{
		Product: detection.Record,
		Badge:   badge,
	})
}

// publishBadge keeps the badge for later actions and renders it
func (h *Handler) publishBadge(badge *usecase.Badge) (BadgeResponse, error) {
	h.badges.Add(badge)
	return renderBadge(badge)
}

func renderBadge(badge *usecase.Badge) (BadgeResponse, error) {
	markup, err := badge.HTML()
	if err != nil {
		return BadgeResponse{}, err
	}
	state, label, _ := badge.ActionState()
	return BadgeResponse{
		ID:       badge.ID,
		HTML:     markup,
		State:    state.String(),
		Label:    label,
		Opinions: badge.Opinions(),
	}, nil
}

func (h *Handler) writeDetectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrExtractionMiss):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPageFetchFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		log.Printf("[HTTP] Detection error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "detection failed"})
	}
}

// ObserveNavigation re-runs detection when the tab's address changed
func (h *Handler) ObserveNavigation(c *gin.Context) {
	var req NavigationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tabId and url are required"})
		return
	}

	mutation := usecase.Mutation{URL: req.URL}
	if strings.TrimSpace(req.HTML) != "" {
		doc, err := usecase.ParseDocument(strings.NewReader(req.HTML))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid html"})
			return
		}
		mutation.Doc = doc
	}

	detection, ran := h.navigation.Observe(c.Request.Context(), req.TabID, mutation)
	resp := NavigationResponse{DetectionRan: ran}
	if detection != nil {
		badge, err := h.publishBadge(detection.Badge)
		if err != nil {
			log.Printf("[HTTP] Badge render error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render badge"})
			return
		}
		resp.Product = detection.Record
		resp.Badge = &badge
	}
	c.JSON(http.StatusOK, resp)
}

// GetOpinions fetches discussion and review data for a product title
func (h *Handler) GetOpinions(c *gin.Context) {
	var req domain.OpinionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Product name is required"})
		return
	}

	result, err := h.opinions.FetchOpinions(c.Request.Context(), req.ProductName)
	if err != nil {
		c.JSON(opinionsErrorStatus(err), gin.H{"success": false, "error": opinionsErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func opinionsErrorStatus(err error) int {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func opinionsErrorMessage(err error) string {
	var fetchErr *domain.OpinionsFetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Message
	}
	return domain.DefaultOpinionsErrorMessage
}

// LoadBadgeOpinions runs the opinions action of a rendered badge and returns
// the re-rendered overlay
func (h *Handler) LoadBadgeOpinions(c *gin.Context) {
	badge, err := h.badges.LoadOpinions(c.Request.Context(), c.Param("id"), h.opinions)
	switch {
	case errors.Is(err, usecase.ErrBadgeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, usecase.ErrActionBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	resp, renderErr := renderBadge(badge)
	if renderErr != nil {
		log.Printf("[HTTP] Badge render error: %v", renderErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render badge"})
		return
	}
	if err != nil {
		c.JSON(opinionsErrorStatus(err), gin.H{"error": opinionsErrorMessage(err), "badge": resp})
		return
	}
	c.JSON(http.StatusOK, gin.H{"badge": resp})
}

// DismissBadge removes a rendered badge
func (h *Handler) DismissBadge(c *gin.Context) {
	if err := h.badges.Dismiss(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// PostMessage delivers a content-side message to the background component
func (h *Handler) PostMessage(c *gin.Context) {
	var msg domain.Message
	if err := c.ShouldBindJSON(&msg); err != nil || msg.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message type is required"})
		return
	}

	reply, err := h.background.HandleMessage(c.Request.Context(), msg)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if reply == nil {
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
		return
	}
	c.JSON(http.StatusOK, reply)
}

// GetTab returns the last product and indicator recorded for a tab
func (h *Handler) GetTab(c *gin.Context) {
	tabID := c.Param("tabId")

	record, err := h.background.Product(c.Request.Context(), tabID)
	if err != nil {
		if errors.Is(err, domain.ErrTabNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := TabResponse{TabID: tabID, Product: record}
	if ind, ok := h.background.Indicator(tabID); ok {
		resp.Indicator = &ind
	}
	c.JSON(http.StatusOK, resp)
}

// CloseTab clears all state kept for a tab
func (h *Handler) CloseTab(c *gin.Context) {
	tabID := c.Param("tabId")

	if err := h.background.TabClosed(c.Request.Context(), tabID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.navigation.Forget(tabID)
	c.Status(http.StatusNoContent)
}
