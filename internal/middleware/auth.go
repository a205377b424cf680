package middleware

import (
	"net/http"
	"net/url"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	adapter "github.com/gwatts/gin-adapter"
)

const subjectKey = "auth_subject"

// JWT validates Auth0 access tokens and stores the subject claim for
// handlers. The JWKS set is cached between requests.
func JWT(domain, audience string) (gin.HandlerFunc, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
	)
	if err != nil {
		return nil, err
	}

	return adapter.Wrap(jwtmiddleware.New(jwtValidator.ValidateToken).CheckJWT), nil
}

func auth0Subject(c *gin.Context) (string, bool) {
	claims, ok := c.Request.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !ok || claims.RegisteredClaims.Subject == "" {
		return "", false
	}
	return claims.RegisteredClaims.Subject, true
}

// HeaderAuth trusts the X-User-ID header as the subject. Development and test
// deployments only; never configure alongside a real Auth0 domain.
func HeaderAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sub := c.GetHeader("X-User-ID")
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(subjectKey, sub)
		c.Next()
	}
}

// GetSubject returns the authenticated principal's subject, from either the
// validated JWT or the dev header middleware.
func GetSubject(c *gin.Context) (string, bool) {
	if sub, exists := c.Get(subjectKey); exists {
		return sub.(string), true
	}
	return auth0Subject(c)
}
