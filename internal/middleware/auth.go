package middleware

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/amankumar-in/univance/domain"
)

const principalKey = "principal"

// JWTAuth verifies the bearer token and stores the resulting Principal on the request.
func JWTAuth(secret string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "Authentication required")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				unauthorized(ctx, "Invalid or expired token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(ctx, "Invalid or expired token")
				return
			}
			principal, err := PrincipalFromClaims(claims)
			if err != nil {
				logger.Warn("jwt claims rejected", zap.Error(err))
				unauthorized(ctx, "Invalid or expired token")
				return
			}

			ctx.SetUserValue(principalKey, principal)
			next(ctx)
		}
	}
}

// PrincipalFrom returns the caller stored by JWTAuth.
func PrincipalFrom(ctx *fasthttp.RequestCtx) (*domain.Principal, bool) {
	p, ok := ctx.UserValue(principalKey).(*domain.Principal)
	return p, ok && p != nil
}

// PrincipalFromClaims maps verified token claims onto a Principal. Unknown roles are dropped.
func PrincipalFromClaims(claims jwt.MapClaims) (*domain.Principal, error) {
	p := &domain.Principal{
		UserID:   stringClaim(claims, "user_id"),
		Email:    stringClaim(claims, "email"),
		Name:     stringClaim(claims, "name"),
		SchoolID: stringClaim(claims, "schoolId"),
		Profiles: make(map[domain.Role]string),
	}
	if p.UserID == "" {
		p.UserID = stringClaim(claims, "id")
	}
	if p.UserID == "" {
		return nil, fmt.Errorf("token carries no user id")
	}

	for _, raw := range stringsClaim(claims, "roles") {
		if role, err := domain.ParseRole(raw); err == nil {
			p.Roles = append(p.Roles, role)
		}
	}
	if raw := stringClaim(claims, "role"); raw != "" {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return nil, err
		}
		p.Role = role
		if !p.HasRole(role) {
			p.Roles = append(p.Roles, role)
		}
	} else if len(p.Roles) > 0 {
		p.Role = p.Roles[0]
	}
	if p.Role == "" {
		return nil, fmt.Errorf("token carries no role")
	}

	if profiles, ok := claims["profiles"].(map[string]interface{}); ok {
		for raw, id := range profiles {
			role, err := domain.ParseRole(raw)
			if err != nil {
				continue
			}
			if s, ok := id.(string); ok && s != "" {
				p.Profiles[role] = s
			}
		}
	}
	p.ChildIDs = stringsClaim(claims, "childIds")
	return p, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func stringsClaim(claims jwt.MapClaims, key string) []string {
	raw, ok := claims[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetBodyString(fmt.Sprintf(`{"success":false,"message":%q}`, message))
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
