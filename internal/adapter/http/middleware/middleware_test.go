package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"subsidy-wallet-service/internal/core/ports"
	"subsidy-wallet-service/internal/core/ports/mocks"
	"subsidy-wallet-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func sessionRouter(sessionSvc ports.SessionService, tokenSvc ports.TokenService) *gin.Engine {
	r := gin.New()
	r.GET("/guarded", SessionAuth(sessionSvc, tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(200, gin.H{"card_number": c.GetString(CtxCardNumber)})
	})
	return r
}

func TestSessionAuth_MissingHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessionSvc := mocks.NewMockSessionService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	router := sessionRouter(sessionSvc, tokenSvc)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionAuth_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessionSvc := mocks.NewMockSessionService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("garbage").Return(nil, apperror.ErrInvalidToken())

	router := sessionRouter(sessionSvc, tokenSvc)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionAuth_GateClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessionSvc := mocks.NewMockSessionService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("valid-token").Return(&ports.TokenClaims{CardNumber: "901234-10-5678"}, nil)
	// Token is still valid but the holder logged out.
	sessionSvc.EXPECT().Authenticated().Return(false)

	router := sessionRouter(sessionSvc, tokenSvc)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionAuth_Passes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessionSvc := mocks.NewMockSessionService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("valid-token").Return(&ports.TokenClaims{CardNumber: "901234-10-5678"}, nil)
	sessionSvc.EXPECT().Authenticated().Return(true)

	router := sessionRouter(sessionSvc, tokenSvc)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "901234-10-5678")
}

func TestWSAuth_QueryToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessionSvc := mocks.NewMockSessionService(ctrl)
	sessionSvc.EXPECT().Authenticated().Return(true)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("ws-token").Return(&ports.TokenClaims{CardNumber: "901234-10-5678"}, nil)

	r := gin.New()
	r.GET("/ws", WSAuth(sessionSvc, tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/ws?token=ws-token", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWSAuth_MissingToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessionSvc := mocks.NewMockSessionService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("").Return(nil, apperror.ErrInvalidToken())

	r := gin.New()
	r.GET("/ws", WSAuth(sessionSvc, tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWSAuth_GateClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// A token outlives logout; the gate must still refuse the feed.
	sessionSvc := mocks.NewMockSessionService(ctrl)
	sessionSvc.EXPECT().Authenticated().Return(false)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("ws-token").Return(&ports.TokenClaims{CardNumber: "901234-10-5678"}, nil)

	r := gin.New()
	r.GET("/ws", WSAuth(sessionSvc, tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/ws?token=ws-token", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestID_GeneratedWhenAbsent(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestMaxBodySize_RejectsOversizedBody(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodySize(16))
	r.POST("/", func(c *gin.Context) {
		var payload map[string]interface{}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusOK)
	})

	big := bytes.Repeat([]byte("a"), 64)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(big))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecovery_Returns500(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}
