package authController

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"readiq/config"
	"readiq/database"
	"readiq/middleware"
	"readiq/models"
	authValidator "readiq/validators/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTKey = "test-secret"

func setupTest(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())),
		&gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	ctrl := New(db, &config.Config{JWTKey: testJWTKey, SaltRound: 4})

	app := fiber.New()
	app.Post("/auth/register", authValidator.Signup(), ctrl.Signup)
	app.Post("/auth/login", authValidator.Login(), ctrl.Login)
	app.Get("/api/refresh-token", ctrl.RefreshToken)

	return app, db
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func cookieValue(resp *http.Response, name string) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func TestSignupCreatesUserAndSetsCookies(t *testing.T) {
	app, db := setupTest(t)

	payload := fiber.Map{"name": "Zainab", "email": "zainab@example.com", "password": "strong-password"}
	resp, err := app.Test(jsonRequest("POST", "/auth/register", payload), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var user models.User
	require.NoError(t, db.Where("email = ?", "zainab@example.com").First(&user).Error)
	assert.Equal(t, models.RoleUser, user.Role)
	// Stored as a bcrypt hash, never plaintext.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("strong-password")))

	assert.NotEmpty(t, cookieValue(resp, middleware.AccessTokenCookie))
	assert.NotEmpty(t, cookieValue(resp, middleware.RefreshTokenCookie))
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	app, _ := setupTest(t)

	payload := fiber.Map{"name": "Zainab", "email": "zainab@example.com", "password": "strong-password"}
	resp, err := app.Test(jsonRequest("POST", "/auth/register", payload), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest("POST", "/auth/register", payload), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestSignupValidation(t *testing.T) {
	app, _ := setupTest(t)

	payload := fiber.Map{"name": "Z", "email": "not-an-email", "password": "short"}
	resp, err := app.Test(jsonRequest("POST", "/auth/register", payload), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	app, _ := setupTest(t)

	signup := fiber.Map{"name": "Zainab", "email": "zainab@example.com", "password": "strong-password"}
	_, err := app.Test(jsonRequest("POST", "/auth/register", signup), -1)
	require.NoError(t, err)

	login := fiber.Map{"email": "zainab@example.com", "password": "wrong-password"}
	resp, err := app.Test(jsonRequest("POST", "/auth/login", login), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLoginSuccess(t *testing.T) {
	app, db := setupTest(t)

	signup := fiber.Map{"name": "Zainab", "email": "zainab@example.com", "password": "strong-password"}
	_, err := app.Test(jsonRequest("POST", "/auth/register", signup), -1)
	require.NoError(t, err)

	login := fiber.Map{"email": "zainab@example.com", "password": "strong-password"}
	resp, err := app.Test(jsonRequest("POST", "/auth/login", login), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.NotEmpty(t, cookieValue(resp, middleware.AccessTokenCookie))
	assert.NotEmpty(t, cookieValue(resp, middleware.RefreshTokenCookie))

	var user models.User
	require.NoError(t, db.Where("email = ?", "zainab@example.com").First(&user).Error)
	assert.False(t, user.LastLogin.IsZero())
}

func TestRefreshTokenRotatesPair(t *testing.T) {
	app, db := setupTest(t)

	user := models.User{Name: "Zainab", Email: "zainab@example.com", Password: "hashed"}
	require.NoError(t, db.Create(&user).Error)

	refreshToken, err := middleware.GenerateRefreshToken(testJWTKey, user.ID)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/refresh-token?redirect=/courses/7", nil)
	req.AddCookie(&http.Cookie{Name: middleware.RefreshTokenCookie, Value: refreshToken})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/courses/7", resp.Header.Get("Location"))

	assert.NotEmpty(t, cookieValue(resp, middleware.AccessTokenCookie))
	assert.NotEmpty(t, cookieValue(resp, middleware.RefreshTokenCookie))
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	app, db := setupTest(t)

	user := models.User{Name: "Zainab", Email: "zainab@example.com", Password: "hashed"}
	require.NoError(t, db.Create(&user).Error)

	// An access token in the refresh cookie must not mint a new pair.
	accessToken, err := middleware.GenerateAccessToken(testJWTKey, &user)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: middleware.RefreshTokenCookie, Value: accessToken})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Empty(t, cookieValue(resp, middleware.AccessTokenCookie))
}

func TestRefreshTokenGarbageRedirectsHome(t *testing.T) {
	app, _ := setupTest(t)

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		req := httptest.NewRequest("GET", "/api/refresh-token", nil)
		if token != "" {
			req.AddCookie(&http.Cookie{Name: middleware.RefreshTokenCookie, Value: token})
		}

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
	}
}

func TestRefreshTokenSanitizesRedirect(t *testing.T) {
	app, db := setupTest(t)

	user := models.User{Name: "Zainab", Email: "zainab@example.com", Password: "hashed"}
	require.NoError(t, db.Create(&user).Error)

	refreshToken, err := middleware.GenerateRefreshToken(testJWTKey, user.ID)
	require.NoError(t, err)

	// Off-site targets collapse to the home page.
	target := "/api/refresh-token?redirect=" + strings.ReplaceAll("//evil.example.com/phish", "/", "%2F")
	req := httptest.NewRequest("GET", target, nil)
	req.AddCookie(&http.Cookie{Name: middleware.RefreshTokenCookie, Value: refreshToken})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}
