package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/davicafu/scopequery/pkg/utils"
	sharedDomain "github.com/davicafu/scopequery/shared/domain"
)

const principalKey = "scopequery.principal"

// Claims que forman el Principal; el resto de claims de tipo string pasan como extras.
var reservedClaims = map[string]struct{}{
	"sub": {}, "role": {}, "tenant_id": {}, "org_id": {},
	"iss": {}, "aud": {}, "exp": {}, "nbf": {}, "iat": {}, "jti": {},
}

// TokenVerifier valida tokens HS256 y construye el Principal a partir de sus claims.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify parsea el header Authorization ("Bearer <token>").
func (v *TokenVerifier) Verify(authHeader string) (*sharedDomain.Principal, error) {
	tokenString, err := extractBearerToken(authHeader)
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return nil, errors.New("token without subject or role")
	}
	tenantID, _ := claims["tenant_id"].(string)
	orgID, _ := claims["org_id"].(string)

	extras := make(map[string]string)
	for name, value := range claims {
		if _, reserved := reservedClaims[name]; reserved {
			continue
		}
		if s, ok := value.(string); ok {
			extras[name] = s
		}
	}

	return sharedDomain.NewPrincipal(sub, role, tenantID, orgID, extras), nil
}

// Sign emite un token HS256. Solo se usa en tests y herramientas locales.
func (v *TokenVerifier) Sign(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// RequirePrincipal exige un token válido y deja el Principal en el contexto de gin.
// Sin identidad verificable la petición termina en 401 antes de llegar al handler.
func RequirePrincipal(verifier *TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := verifier.Verify(c.GetHeader("Authorization"))
		if err != nil {
			log.Debug("Token rechazado", zap.String("path", c.FullPath()), zap.Error(err))
			utils.SendUnauthorized(c, "missing or invalid credentials")
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFrom devuelve el Principal fijado por RequirePrincipal, o nil.
func PrincipalFrom(c *gin.Context) *sharedDomain.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	principal, _ := v.(*sharedDomain.Principal)
	return principal
}

func extractBearerToken(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}
