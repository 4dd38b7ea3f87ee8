package authController

import (
	"log"
	"time"

	"readiq/config"
	"readiq/middleware"
	"readiq/models"
	"readiq/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Controller handles registration, login and token refresh. Dependencies are
// injected explicitly so tests can run against an in-memory database.
type Controller struct {
	DB        *gorm.DB
	JWTKey    string
	SaltRound int
}

func New(db *gorm.DB, cfg *config.Config) *Controller {
	return &Controller{
		DB:        db,
		JWTKey:    cfg.JWTKey,
		SaltRound: cfg.SaltRound,
	}
}

func (ctrl *Controller) Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSignup").(*struct {
		Name     string `json:"name" validate:"required,min=2"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Check if email already exists
	if err := ctrl.DB.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), ctrl.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Password: string(hashedPassword),
	}

	if err := ctrl.DB.Create(&newUser).Error; err != nil {
		log.Printf("Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}

	accessToken, refreshToken, err := ctrl.issueTokens(&newUser)
	if err != nil {
		log.Printf("Error generating tokens: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}
	middleware.SetAuthCookies(c, accessToken, refreshToken)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", fiber.Map{
		"user":  newUser,
		"token": accessToken,
	})
}

func (ctrl *Controller) Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := ctrl.DB.Where("email = ? AND is_deleted = false", reqData.Email).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
	}

	ctrl.DB.Model(&user).Update("last_login", time.Now())

	accessToken, refreshToken, err := ctrl.issueTokens(&user)
	if err != nil {
		log.Printf("Error generating tokens: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to login!", nil)
	}
	middleware.SetAuthCookies(c, accessToken, refreshToken)

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged in successfully!", fiber.Map{
		"user":  user,
		"token": accessToken,
	})
}

// RefreshToken exchanges the refresh cookie for a new token pair and sends
// the browser back where it came from. Any failure redirects home without
// surfacing why: the caller cannot act on token internals anyway.
func (ctrl *Controller) RefreshToken(c *fiber.Ctx) error {
	redirect := utils.SanitizeRedirectPath(c.Query("redirect"))

	refreshToken := c.Cookies(middleware.RefreshTokenCookie)
	if refreshToken == "" {
		return c.Redirect("/", fiber.StatusFound)
	}

	claims, err := middleware.ParseToken(ctrl.JWTKey, refreshToken)
	if err != nil {
		return c.Redirect("/", fiber.StatusFound)
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return c.Redirect("/", fiber.StatusFound)
	}

	userID, ok := claims["userId"].(float64)
	if !ok {
		return c.Redirect("/", fiber.StatusFound)
	}

	var user models.User
	if err := ctrl.DB.Where("id = ? AND is_deleted = false", uint(userID)).First(&user).Error; err != nil {
		return c.Redirect("/", fiber.StatusFound)
	}

	accessToken, newRefreshToken, err := ctrl.issueTokens(&user)
	if err != nil {
		return c.Redirect("/", fiber.StatusFound)
	}
	middleware.SetAuthCookies(c, accessToken, newRefreshToken)

	return c.Redirect(redirect, fiber.StatusFound)
}

func (ctrl *Controller) issueTokens(user *models.User) (string, string, error) {
	accessToken, err := middleware.GenerateAccessToken(ctrl.JWTKey, user)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := middleware.GenerateRefreshToken(ctrl.JWTKey, user.ID)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}
