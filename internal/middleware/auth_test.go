package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	jwtsvc "globobook/internal/pkg/jwt"
)

func staffRouter(jwt *jwtsvc.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/check-in", StaffAuth(jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"staff": c.GetString("staff_email")})
	})
	return r
}

func TestStaffAuth_ValidToken(t *testing.T) {
	jwt := jwtsvc.New("test-secret", time.Hour)
	token, err := jwt.GenerateToken("crew@globobook.mx", "staff")
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/check-in", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	staffRouter(jwt).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestStaffAuth_MissingHeader(t *testing.T) {
	jwt := jwtsvc.New("test-secret", time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/check-in", nil)
	w := httptest.NewRecorder()
	staffRouter(jwt).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestStaffAuth_WrongRole(t *testing.T) {
	jwt := jwtsvc.New("test-secret", time.Hour)
	token, err := jwt.GenerateToken("someone@example.com", "customer")
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/check-in", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	staffRouter(jwt).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestStaffAuth_GarbageToken(t *testing.T) {
	jwt := jwtsvc.New("test-secret", time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/check-in", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	w := httptest.NewRecorder()
	staffRouter(jwt).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
