package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/lesson"
	"github.com/okapitech/ratiba/core/provider"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    []byte(core.Conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "providerToken",
		Claims:        new(Claims),
	}
	contextProviderKey = "provider"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	SchoolID   string `json:"school_id,omitempty"`
	DistrictID string `json:"district_id,omitempty"`
	StateID    string `json:"state_id,omitempty"`
}

// Scope rebuilds the tenant triple carried by the token. Absent fields stay
// NULL: queries narrow, never widen.
func (c Claims) Scope() lesson.Scope {
	return lesson.Scope{
		SchoolID:   null.NewString(c.SchoolID, c.SchoolID != ""),
		DistrictID: null.NewString(c.DistrictID, c.DistrictID != ""),
		StateID:    null.NewString(c.StateID, c.StateID != ""),
	}
}

func GetProviderClaims(prov provider.Provider) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   prov.ID,
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:       prov.Name,
		Email:      prov.Email,
		Role:       prov.Role,
		SchoolID:   prov.SchoolID.String,
		DistrictID: prov.DistrictID.String,
		StateID:    prov.StateID.String,
	}
}

// GenerateToken generates a signed JWT token string representing the provider Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextProvider resolves the authenticated provider, caching it on the
// request context. An account deleted since token issue resolves to an empty
// Provider carrying only the token's role, so read paths degrade to an empty
// calendar instead of erroring.
func getContextProvider(ctx echo.Context, svc provider.ServiceInterface) (provider.Provider, error) {
	if prov, ok := ctx.Get(contextProviderKey).(provider.Provider); ok {
		return prov, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return provider.Provider{}, errors.Wrap(err, "getting context claims")
	}

	prov, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == provider.ErrNotFound {
			return provider.Provider{Role: claims.Role}, nil
		}
		return provider.Provider{}, errors.Wrap(err, "finding provider by ID")
	}
	ctx.Set(contextProviderKey, prov)
	return prov, nil
}
