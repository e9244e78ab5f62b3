package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/internal/apperrors"
	"github.com/pageza/kodawari/backend/internal/service"
	"github.com/pageza/kodawari/backend/internal/types"
)

// AccountHandler serves profiles, account deletion and the contact form
type AccountHandler struct {
	responder
	profiles service.IProfileService
	mailer   service.IContactMailer
}

// NewAccountHandler creates a new AccountHandler instance
func NewAccountHandler(profiles service.IProfileService, mailer service.IContactMailer, log *zap.Logger, production bool) *AccountHandler {
	return &AccountHandler{
		responder: responder{log: log, production: production},
		profiles:  profiles,
		mailer:    mailer,
	}
}

func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	handle(rg, "/user-profiles", methods{
		http.MethodGet:  {h.GetProfile},
		http.MethodPost: {h.ProvisionProfile},
	})
	handle(rg, "/account-delete", methods{http.MethodPost: {h.DeleteAccount}})
	handle(rg, "/send-email", methods{http.MethodPost: {h.SendEmail}})
}

// ProvisionProfile creates or refreshes the profile of a new sign-up
func (h *AccountHandler) ProvisionProfile(c *gin.Context) {
	var req types.ProvisionProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	profile, err := h.profiles.ProvisionProfile(c.Request.Context(), req.UserID, req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user profile created", "profile": profile})
}

// GetProfile returns the profile named by the userId query parameter
func (h *AccountHandler) GetProfile(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		h.respondError(c, apperrors.NewValidationError("userId is required"))
		return
	}

	profile, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	var req types.DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	if err := h.profiles.DeleteAccount(c.Request.Context(), req.UserID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

// SendEmail sends the contact form to the customer and to support
func (h *AccountHandler) SendEmail(c *gin.Context) {
	var req types.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	if err := h.mailer.SendContact(c.Request.Context(), req.ToEmail, req.Subject, req.Message); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email sent"})
}
