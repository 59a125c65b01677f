package handlers

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/you/authwebsvc/domain"
	"github.com/you/authwebsvc/internal/http/middleware"
)

const (
	isLoggedInCookieKey = "isLoggedIn"
	userInfoCookieKey   = "userInfo"

	// rememberMarker rides along in the OAuth state so the callback knows
	// whether to issue persistent cookies.
	rememberMarker = ".r"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	passwordAuth  domain.PasswordAuthService
	otpAuth       domain.OtpAuthService
	oauthSvc      domain.OAuthService
	oauthProvider domain.OAuthProvider
	stateStore    domain.StateStore
	tokenSvc      domain.TokenService
	tokenTTL      time.Duration
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(
	passwordAuth domain.PasswordAuthService,
	otpAuth domain.OtpAuthService,
	oauthSvc domain.OAuthService,
	oauthProvider domain.OAuthProvider,
	stateStore domain.StateStore,
	tokenSvc domain.TokenService,
	tokenTTL time.Duration,
) *AuthHandlers {
	return &AuthHandlers{
		passwordAuth:  passwordAuth,
		otpAuth:       otpAuth,
		oauthSvc:      oauthSvc,
		oauthProvider: oauthProvider,
		stateStore:    stateStore,
		tokenSvc:      tokenSvc,
		tokenTTL:      tokenTTL,
	}
}

// statusOf translates an error into a response status via its kind, so new
// sentinels pick up a status without touching individual handlers.
func statusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindOk:
		return http.StatusOK
	case domain.KindNotFound, domain.KindValidation, domain.KindInvalidToken:
		return http.StatusBadRequest
	case domain.KindUnauthorized, domain.KindLockedOut:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the response for a failed service call. clientMsg is
// what non-internal failures show the caller; internal failures are logged
// under op and masked.
func respondError(c *gin.Context, op string, err error, clientMsg string) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s error: %v", op, err)
		clientMsg = "Internal server error"
	}
	c.JSON(status, gin.H{"error": clientMsg})
}

// SignInRequest represents a password sign-in request
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignUpRequest represents a registration request
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password" binding:"required"`
}

// SignIn handles password sign-in. A known, unlocked account with an
// unconfirmed email gets a fresh OTP instead of a session.
func (h *AuthHandlers) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	remember := c.Query("remember") == "true"

	result, err := h.passwordAuth.Authenticate(c.Request.Context(), domain.PasswordCredentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, "Sign-in", err, "")
		return
	}

	if result.Succeeded && result.User != nil {
		token, err := h.tokenSvc.Generate(result.User)
		if err != nil {
			respondError(c, "Sign-in", err, "")
			return
		}
		h.setAuthCookies(c, result.User, token, remember)
		c.JSON(http.StatusOK, gin.H{"succeeded": true})
		return
	}

	if result.User != nil && !result.IsEmailConfirmed && !result.IsLockedOut {
		confirmationToken, err := h.otpAuth.SendOtp(c.Request.Context(), result.User)
		if err != nil {
			respondError(c, "Sign-in", err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"succeeded":         false,
			"isEmailConfirmed":  false,
			"confirmationToken": confirmationToken,
		})
		return
	}

	c.JSON(statusOf(result.Denial()), gin.H{
		"succeeded":   false,
		"isLockedOut": result.IsLockedOut,
	})
}

// SignUp handles registration followed by OTP dispatch
func (h *AuthHandlers) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.passwordAuth.Register(c.Request.Context(), domain.RegistrationCredentials{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	}, true)
	if err != nil {
		respondError(c, "Sign-up", err, "")
		return
	}
	if !result.Succeeded || result.User == nil {
		log.Printf("Failed to register user: %s", result.Message)
		c.JSON(http.StatusBadRequest, gin.H{"error": result.Message})
		return
	}

	confirmationToken, err := h.otpAuth.SendOtp(c.Request.Context(), result.User)
	if err != nil {
		respondError(c, "Sign-up", err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":     confirmationToken,
		"message": result.Message,
	})
}

// VerifyAccount handles OTP verification and opens the session on success
func (h *AuthHandlers) VerifyAccount(c *gin.Context) {
	verificationKey := c.Param("verificationKey")
	code := c.PostForm("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code is required"})
		return
	}

	result, err := h.otpAuth.Verify(c.Request.Context(), verificationKey, code)
	if err != nil {
		respondError(c, "Verify account", err, "Invalid key")
		return
	}
	if !result.Succeeded {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Wrong code or code may have expired"})
		return
	}

	token, err := h.tokenSvc.Generate(result.User)
	if err != nil {
		respondError(c, "Verify account", err, "")
		return
	}
	h.setAuthCookies(c, result.User, token, false)
	c.JSON(http.StatusOK, gin.H{"succeeded": true})
}

// ResendOtp replaces a pending verification flow with a fresh one
func (h *AuthHandlers) ResendOtp(c *gin.Context) {
	oldVerificationKey := c.Param("oldVerificationKey")

	newKey, err := h.otpAuth.Resend(c.Request.Context(), oldVerificationKey)
	if err != nil {
		respondError(c, "Resend OTP", err, "Invalid key")
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": newKey})
}

// RequestResetPassword emails a recovery link for a known address
func (h *AuthHandlers) RequestResetPassword(c *gin.Context) {
	email := c.PostForm("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	if err := h.passwordAuth.RequestPasswordReset(c.Request.Context(), email); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			c.JSON(http.StatusBadRequest, gin.H{"message": "No account found with this email"})
			return
		}
		respondError(c, "Request reset password", err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"succeeded": true})
}

// ResetPassword consumes the emailed token and installs the new password
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	encodedToken := c.Param("encodedToken")
	newPassword := c.PostForm("newPassword")
	if newPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New password is required"})
		return
	}

	ok, err := h.passwordAuth.ResetPassword(c.Request.Context(), encodedToken, newPassword)
	if err != nil {
		respondError(c, "Reset password", err, "Invalid reset token")
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"succeeded": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"succeeded": true})
}

// GoogleSignIn redirects the browser to the provider's consent page
func (h *AuthHandlers) GoogleSignIn(c *gin.Context) {
	state := uuid.NewString()
	if c.Query("remember") == "true" {
		state += rememberMarker
	}

	if err := h.stateStore.Store(c.Request.Context(), state); err != nil {
		respondError(c, "Google sign-in", err, "")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.oauthProvider.AuthCodeURL(state))
}

// GoogleCallback exchanges the provider code and reconciles the identity
// against the local account store.
func (h *AuthHandlers) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	if err := h.stateStore.Consume(c.Request.Context(), state); err != nil {
		c.Redirect(http.StatusFound, "/login?error=OAuth%20failed")
		return
	}
	remember := strings.HasSuffix(state, rememberMarker)

	identity, err := h.oauthProvider.Authenticate(c.Request.Context(), c.Query("code"))
	if err != nil {
		log.Printf("Google sign-in error: %v", err)
		c.Redirect(http.StatusFound, "/login?error=OAuth%20failed")
		return
	}

	result, err := h.oauthSvc.AuthenticateOrRegister(c.Request.Context(), identity)
	if err != nil {
		respondError(c, "Google sign-in", err, "")
		return
	}
	if !result.Succeeded {
		c.Redirect(http.StatusFound, "/login?error=OAuth%20failed")
		return
	}

	token, err := h.tokenSvc.Generate(result.User)
	if err != nil {
		respondError(c, "Google sign-in", err, "")
		return
	}
	h.setAuthCookies(c, result.User, token, remember)
	c.Redirect(http.StatusFound, "/")
}

// SignOut clears the session cookies
func (h *AuthHandlers) SignOut(c *gin.Context) {
	h.removeAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully"})
}

// Me returns the identity bound to the session
func (h *AuthHandlers) Me(c *gin.Context) {
	userID, _ := c.Get("user_id")
	username, _ := c.Get("username")
	c.JSON(http.StatusOK, gin.H{
		"user_id":  userID,
		"username": username,
	})
}

// setAuthCookies installs the session cookie plus the two frontend-readable
// companions. Without remember the cookies die with the browser session.
func (h *AuthHandlers) setAuthCookies(c *gin.Context, user *domain.User, token string, remember bool) {
	maxAge := 0
	if remember {
		maxAge = int(h.tokenTTL.Seconds())
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookieKey, token, maxAge, "/", "", true, true)

	userInfo, err := json.Marshal(gin.H{
		"username":   user.Username,
		"email":      user.Email,
		"dateJoined": user.CreatedAt,
	})
	if err == nil {
		encoded := base64.StdEncoding.EncodeToString(userInfo)
		c.SetCookie(userInfoCookieKey, encoded, maxAge, "/", "", true, false)
	}

	c.SetCookie(isLoggedInCookieKey, "true", maxAge, "/", "", true, false)
}

func (h *AuthHandlers) removeAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookieKey, "", -1, "/", "", true, true)
	c.SetCookie(userInfoCookieKey, "", -1, "/", "", true, false)
	c.SetCookie(isLoggedInCookieKey, "", -1, "/", "", true, false)
}
