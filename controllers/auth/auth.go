package authController

import (
	"codecash/config"
	"codecash/database"
	"codecash/middleware"
	"codecash/models"
	"codecash/utils"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a new user account.
func Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRegister").(*struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Phone     string `json:"phone"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if db == nil {
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Database disconnected", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process password!", nil)
	}

	user := models.User{
		FirstName: reqData.FirstName,
		LastName:  reqData.LastName,
		Name:      strings.TrimSpace(reqData.FirstName + " " + reqData.LastName),
		Email:     reqData.Email,
		Password:  string(hashedPassword),
		Phone:     reqData.Phone,
	}
	if err := db.Create(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Registration failed: "+err.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User created", nil)
}

// Login verifies credentials and issues a JWT.
func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if db == nil {
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Database disconnected", nil)
	}

	var user models.User
	if err := db.Where("email = ? AND is_deleted = false", reqData.Email).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials", nil)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Email)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Login failed", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":        user.ID,
			"name":      user.Name,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"email":     user.Email,
			"phone":     user.Phone,
			"avatar":    user.AvatarURL,
		},
	})
}

// UpdateProfile updates the caller's avatar.
func UpdateProfile(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid user ID!", nil)
	}

	reqData := new(struct {
		Avatar string `json:"avatar"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to parse request body!", nil)
	}

	db := database.Database.Db
	if db == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated (local only)", nil)
	}

	if err := db.Model(&models.User{}).Where("id = ? AND is_deleted = false", userId).
		Update("avatar_url", reqData.Avatar).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Update failed", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated", nil)
}

// ChangePassword verifies the current password before setting a new one.
func ChangePassword(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid user ID!", nil)
	}

	reqData, ok := c.Locals("validatedChangePassword").(*struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if db == nil {
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Database disconnected", nil)
	}

	var user models.User
	if err := db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.CurrentPassword)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Incorrect current password", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process password!", nil)
	}

	if err := db.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update password", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password updated successfully", nil)
}

// ForgotPassword issues a short-lived numeric reset token. The response does
// not reveal whether the email exists.
func ForgotPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedForgotPassword").(*struct {
		Email string `json:"email"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if db == nil {
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Database disconnected", nil)
	}

	var user models.User
	if err := db.Where("email = ? AND is_deleted = false", reqData.Email).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "If this email exists, a reset token has been sent.", nil)
	}

	token := utils.GenerateResetToken()
	reset := models.PasswordReset{
		Email:     reqData.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}
	if err := db.Create(&reset).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Request failed", nil)
	}

	if err := utils.SendPasswordResetEmail(reqData.Email, token); err != nil {
		log.Printf("[AUTH] failed to email reset token to %s: %v", reqData.Email, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reset token sent to email.", nil)
}

// ResetPassword consumes a reset token: the most recent unexpired token for
// the email wins, and all tokens for that email are deleted on success.
func ResetPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedResetPassword").(*struct {
		Email       string `json:"email"`
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if db == nil {
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Database disconnected", nil)
	}

	var reset models.PasswordReset
	if err := db.Where("email = ? AND token = ? AND expires_at > ?", reqData.Email, reqData.Token, time.Now()).
		Order("created_at DESC").First(&reset).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid or expired token", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process password!", nil)
	}

	if err := db.Model(&models.User{}).Where("email = ?", reqData.Email).
		Update("password", string(hashedPassword)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Reset failed", nil)
	}

	// Invalidate every outstanding token for this email
	if err := db.Unscoped().Where("email = ?", reqData.Email).Delete(&models.PasswordReset{}).Error; err != nil {
		log.Printf("[AUTH] failed to delete reset tokens for %s: %v", reqData.Email, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password reset successful. Please login.", nil)
}
