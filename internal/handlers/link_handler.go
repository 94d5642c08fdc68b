package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dolfin/internal/services"
)

// LinkHandler handles provider-identity linking requests.
type LinkHandler struct {
	linkService services.LinkServicer
}

// NewLinkHandler creates a new LinkHandler
func NewLinkHandler(linkService services.LinkServicer) *LinkHandler {
	return &LinkHandler{linkService: linkService}
}

// LinkResponse carries the provider-assigned account id.
type LinkResponse struct {
	ProviderAccountID string `json:"provider_account_id"`
}

// LinkURLResponse carries the public account-linking URL.
type LinkURLResponse struct {
	URL string `json:"url"`
}

// Register registers the authenticated user with the remote provider
// @Summary     Link provider identity
// @Description Register the authenticated user with the banking-data provider
// @Tags        link
// @Produce     json
// @Security    BearerAuth
// @Success     201 {object} LinkResponse "Provider account created"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Already linked"
// @Failure     502 {object} ErrorResponse "Provider unavailable"
// @Router      /link [post]
func (h *LinkHandler) Register(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := h.linkService.RegisterProviderIdentity(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"provider_account_id": accountID})
}

// GetLinkURL returns the provider's public account-linking URL
// @Summary     Get account-linking URL
// @Description Build the provider's public authorization URL for the authenticated user
// @Tags        link
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} LinkURLResponse "Account-linking URL"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Not linked"
// @Failure     502 {object} ErrorResponse "Provider unavailable"
// @Router      /link/url [get]
func (h *LinkHandler) GetLinkURL(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	url, err := h.linkService.BuildAccountLinkURL(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
