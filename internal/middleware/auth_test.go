package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/amankumar-in/univance/domain"
)

const testSecret = "test-secret"

func signed(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestPrincipalFromClaims(t *testing.T) {
	tests := []struct {
		name    string
		claims  jwt.MapClaims
		wantErr bool
		check   func(t *testing.T, p *domain.Principal)
	}{
		{
			name: "active role joins roles",
			claims: jwt.MapClaims{
				"id":       "u1",
				"role":     "parent",
				"roles":    []interface{}{"teacher", "wizard"},
				"profiles": map[string]interface{}{"parent": "p1", "wizard": "x"},
				"childIds": []interface{}{"s1", ""},
			},
			check: func(t *testing.T, p *domain.Principal) {
				assert.Equal(t, "u1", p.UserID)
				assert.Equal(t, domain.RoleParent, p.Role)
				assert.ElementsMatch(t, []domain.Role{domain.RoleTeacher, domain.RoleParent}, p.Roles)
				assert.Equal(t, map[domain.Role]string{domain.RoleParent: "p1"}, p.Profiles)
				assert.Equal(t, []string{"s1"}, p.ChildIDs)
			},
		},
		{
			name:   "first role becomes active",
			claims: jwt.MapClaims{"user_id": "u2", "roles": []interface{}{"student"}},
			check: func(t *testing.T, p *domain.Principal) {
				assert.Equal(t, "u2", p.UserID)
				assert.Equal(t, domain.RoleStudent, p.Role)
			},
		},
		{name: "missing user", claims: jwt.MapClaims{"role": "student"}, wantErr: true},
		{name: "missing role", claims: jwt.MapClaims{"id": "u3"}, wantErr: true},
		{name: "unknown role", claims: jwt.MapClaims{"id": "u3", "role": "wizard"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PrincipalFromClaims(tt.claims)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestJWTAuth(t *testing.T) {
	valid := jwt.MapClaims{"id": "u1", "role": "student", "exp": time.Now().Add(time.Hour).Unix()}
	expired := jwt.MapClaims{"id": "u1", "role": "student", "exp": time.Now().Add(-time.Hour).Unix()}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid bearer", "Bearer " + signed(t, jwt.SigningMethodHS256, valid), fasthttp.StatusOK},
		{"raw token", signed(t, jwt.SigningMethodHS256, valid), fasthttp.StatusOK},
		{"missing", "", fasthttp.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, jwt.SigningMethodHS256, expired), fasthttp.StatusUnauthorized},
		{"garbage", "Bearer not.a.token", fasthttp.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *domain.Principal
			handler := JWTAuth(testSecret, nil)(func(ctx *fasthttp.RequestCtx) {
				seen, _ = PrincipalFrom(ctx)
				ctx.SetStatusCode(fasthttp.StatusOK)
			})

			var ctx fasthttp.RequestCtx
			if tt.header != "" {
				ctx.Request.Header.Set("Authorization", tt.header)
			}
			handler(&ctx)

			assert.Equal(t, tt.status, ctx.Response.StatusCode())
			if tt.status == fasthttp.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, "u1", seen.UserID)
			} else {
				assert.Nil(t, seen)
				assert.Contains(t, string(ctx.Response.Body()), `"success":false`)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	called := false
	handler := CORS(func(ctx *fasthttp.RequestCtx) { called = true })

	var preflight fasthttp.RequestCtx
	preflight.Request.Header.SetMethod(fasthttp.MethodOptions)
	preflight.Request.Header.Set("Origin", "https://app.example.com")
	handler(&preflight)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusNoContent, preflight.Response.StatusCode())
	assert.Equal(t, "https://app.example.com", string(preflight.Response.Header.Peek("Access-Control-Allow-Origin")))
	assert.Equal(t, "true", string(preflight.Response.Header.Peek("Access-Control-Allow-Credentials")))

	var plain fasthttp.RequestCtx
	plain.Request.Header.SetMethod(fasthttp.MethodGet)
	handler(&plain)

	assert.True(t, called)
	assert.Equal(t, "*", string(plain.Response.Header.Peek("Access-Control-Allow-Origin")))
}
