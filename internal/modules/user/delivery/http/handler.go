package handler

import (
	"net/http"
	"time"

	"anoa.com/codediary/internal/modules/user/dto"
	"anoa.com/codediary/internal/modules/user/service"
	"anoa.com/codediary/internal/web"
	"anoa.com/codediary/pkg/apperror"
	"anoa.com/codediary/pkg/response"
	"anoa.com/codediary/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  service.AuthService
	renderer     *web.Renderer
	secureCookie bool
}

func NewAuthHandler(authService service.AuthService, renderer *web.Renderer, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		renderer:     renderer,
		secureCookie: secureCookie,
	}
}

func (h *AuthHandler) SignupPage(c *gin.Context) {
	h.renderer.HTML(c, http.StatusOK, "signup.html", gin.H{
		"Title": "Sign up",
		"Form":  dto.SignupInput{},
	})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var input dto.SignupInput
	if err := c.ShouldBind(&input); err != nil {
		h.renderer.HTML(c, http.StatusBadRequest, "signup.html", gin.H{
			"Title":  "Sign up",
			"Form":   input,
			"Errors": validator.FieldErrors(err),
		})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), input, false)
	if err != nil {
		if apperror.MapErrorToStatus(err) == http.StatusBadRequest {
			h.renderer.HTML(c, http.StatusBadRequest, "signup.html", gin.H{
				"Title":     "Sign up",
				"Form":      input,
				"FormError": err.Error(),
			})
			return
		}
		h.renderer.Error(c, err)
		return
	}

	res, err := h.authService.IssueToken(user)
	if err != nil {
		h.renderer.Error(c, err)
		return
	}

	h.setSession(c, res)
	web.AddFlash(c, web.LevelSuccess, "Welcome, "+user.Username+"! Your account has been created.")
	c.Redirect(http.StatusFound, "/entries")
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.renderer.HTML(c, http.StatusOK, "login.html", gin.H{
		"Title": "Log in",
		"Form":  dto.LoginInput{},
		"Next":  web.SafeNext(c.Query("next"), ""),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	next := web.SafeNext(c.PostForm("next"), "/entries")

	var input dto.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		h.renderer.HTML(c, http.StatusBadRequest, "login.html", gin.H{
			"Title":     "Log in",
			"Form":      input,
			"Next":      next,
			"FormError": "Please enter a correct username and password.",
		})
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		if apperror.MapErrorToStatus(err) == http.StatusUnauthorized {
			h.renderer.HTML(c, http.StatusUnauthorized, "login.html", gin.H{
				"Title":     "Log in",
				"Form":      input,
				"Next":      next,
				"FormError": "Please enter a correct username and password.",
			})
			return
		}
		h.renderer.Error(c, err)
		return
	}

	h.setSession(c, res)
	c.Redirect(http.StatusFound, next)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(response.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	web.AddFlash(c, web.LevelInfo, "You have been logged out.")
	c.Redirect(http.StatusFound, "/login")
}

// APILogin is the JSON variant for non-browser clients.
func (h *AuthHandler) APILogin(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	h.setSession(c, res)
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) setSession(c *gin.Context, res *dto.AuthResponse) {
	maxAge := int(time.Until(time.Unix(res.ExpiresIn, 0)).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(response.SessionCookie, res.AccessToken, maxAge, "/", "", h.secureCookie, true)
}
