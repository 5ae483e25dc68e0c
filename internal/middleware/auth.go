package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"sgo/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Context keys set by RequireRole.
const (
	ContextUserID    = "userID"
	ContextUserRole  = "userRole"
	ContextCompanyID = "companyID"
)

const accessTokenCookie = "access_token"

// Claims is the validated subset of an access token.
type Claims struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      string
}

// Auth validates HS256 access tokens and manages the token cookie.
type Auth struct {
	secret        []byte
	secureCookies bool
}

// NewAuth builds the middleware. secureCookies switches the cookie to SameSite=None; Secure
// for cross-origin deployments.
func NewAuth(secret []byte, secureCookies bool) *Auth {
	return &Auth{secret: secret, secureCookies: secureCookies}
}

// SetTokenCookie stores the access token as an HttpOnly cookie.
func (a *Auth) SetTokenCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(a.sameSite())
	c.SetCookie(accessTokenCookie, token, int(ttl.Seconds()), "/", "", a.secureCookies, true)
}

// ClearTokenCookie removes the access token cookie.
func (a *Auth) ClearTokenCookie(c *gin.Context) {
	c.SetSameSite(a.sameSite())
	c.SetCookie(accessTokenCookie, "", -1, "/", "", a.secureCookies, true)
}

func (a *Auth) sameSite() http.SameSite {
	if a.secureCookies {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// ParseToken checks the signature and expiry and extracts the identity claims.
func (a *Auth) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	sub, _ := mapClaims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, errors.New("invalid subject claim")
	}
	company, _ := mapClaims["company_id"].(string)
	companyID, err := uuid.Parse(company)
	if err != nil {
		return nil, errors.New("invalid company claim")
	}
	role, ok := mapClaims["role"].(string)
	if !ok || role == "" {
		return nil, errors.New("role not found in token")
	}
	return &Claims{UserID: userID, CompanyID: companyID, Role: role}, nil
}

// TokenFromRequest reads the cookie first and falls back to a Bearer header.
func TokenFromRequest(c *gin.Context) (string, error) {
	if token, err := c.Cookie(accessTokenCookie); err == nil && token != "" {
		return token, nil
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization is missing")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid authorization format, expected 'Bearer <token>'")
	}
	return parts[1], nil
}

// RequireRole validates the token and checks the role against allowedRoles.
// An empty list accepts any authenticated user.
func (a *Auth) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := TokenFromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}
		claims, err := a.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
			return
		}

		if len(allowedRoles) > 0 {
			roleAllowed := false
			for _, role := range allowedRoles {
				if claims.Role == role {
					roleAllowed = true
					break
				}
			}
			if !roleAllowed {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextCompanyID, claims.CompanyID)
		c.Next()
	}
}

// AllowRoles checks the role set by RequireRole. Mount it behind RequireRole.
func AllowRoles(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	}
}
