package authValidator

import (
	"codecash/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Register validates a signup request
func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
			Email     string `json:"email"`
			Password  string `json:"password"`
			Phone     string `json:"phone"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.FirstName == "" {
			errors["firstName"] = "First name is required!"
		}
		if err := validate.Var(reqData.Email, "required,email"); err != nil {
			errors["email"] = "A valid email is required!"
		}
		if len(reqData.Password) < 6 {
			errors["password"] = "Password must be at least 6 characters!"
		}
		if reqData.Phone == "" {
			errors["phone"] = "Phone number is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRegister", reqData)
		return c.Next()
	}
}

// Login validates a login request
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if err := validate.Var(reqData.Email, "required,email"); err != nil {
			errors["email"] = "A valid email is required!"
		}
		if reqData.Password == "" {
			errors["password"] = "Password is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}

// ChangePassword validates a password change request
func ChangePassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CurrentPassword string `json:"currentPassword"`
			NewPassword     string `json:"newPassword"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.CurrentPassword == "" {
			errors["currentPassword"] = "Current password is required!"
		}
		if len(reqData.NewPassword) < 6 {
			errors["newPassword"] = "New password must be at least 6 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedChangePassword", reqData)
		return c.Next()
	}
}

// ForgotPassword validates a reset token request
func ForgotPassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Email string `json:"email"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if err := validate.Var(reqData.Email, "required,email"); err != nil {
			errors["email"] = "A valid email is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedForgotPassword", reqData)
		return c.Next()
	}
}

// ResetPassword validates a token-based password reset
func ResetPassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Email       string `json:"email"`
			Token       string `json:"token"`
			NewPassword string `json:"newPassword"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if err := validate.Var(reqData.Email, "required,email"); err != nil {
			errors["email"] = "A valid email is required!"
		}
		if len(reqData.Token) != 6 {
			errors["token"] = "A 6-digit token is required!"
		}
		if len(reqData.NewPassword) < 6 {
			errors["newPassword"] = "New password must be at least 6 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedResetPassword", reqData)
		return c.Next()
	}
}
