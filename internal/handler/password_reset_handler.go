package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deephumans/deephumans/internal/pkg/errcode"
	"github.com/deephumans/deephumans/internal/pkg/response"
	"github.com/deephumans/deephumans/internal/service"
	"github.com/deephumans/deephumans/internal/session"
)

// codeSentMessage is returned whether or not the email maps to an account.
const codeSentMessage = "If that email is registered, a verification code has been sent."

type PasswordResetHandler struct {
	resets *service.PasswordResetService
}

func NewPasswordResetHandler(resets *service.PasswordResetService) *PasswordResetHandler {
	return &PasswordResetHandler{resets: resets}
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type verifyCodeRequest struct {
	Code string `json:"code"`
}

type resetPasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *PasswordResetHandler) Forgot(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		response.Error(c, errcode.ErrInvalid, "invalid email")
		return
	}
	if err := h.resets.IssueChallenge(c.Request.Context(), session.FromContext(c), req.Email); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"status": codeSentMessage})
}

func (h *PasswordResetHandler) Verify(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	switch h.resets.VerifyChallenge(session.FromContext(c), req.Code) {
	case service.StatusVerified:
		response.Success(c, gin.H{"verified": true})
	case service.StatusInvalid:
		response.Error(c, errcode.ErrInvalidCode, "invalid verification code")
	default:
		response.Error(c, errcode.ErrSessionExpired, "session expired, please request a new code")
	}
}

func (h *PasswordResetHandler) Reset(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.NewPassword == "" || req.NewPassword != req.ConfirmPassword {
		response.Error(c, errcode.ErrInvalid, "passwords do not match")
		return
	}
	if err := h.resets.CompletePasswordReset(c.Request.Context(), session.FromContext(c), req.NewPassword); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "Your password has been reset successfully. You can now log in with your new password."})
}
