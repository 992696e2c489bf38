package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func echoRouter() *gin.Engine {
	router := gin.New()
	router.Use(EnsureUTF8Body())
	router.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
	})
	return router
}

func TestEnsureUTF8Body(t *testing.T) {
	router := echoRouter()

	t.Run("UTF-8 原样透传", func(t *testing.T) {
		body := []byte(`{"name":"客厅平板"}`)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(body)))

		assert.Equal(t, string(body), w.Body.String())
	})

	t.Run("GBK 转为 UTF-8", func(t *testing.T) {
		gbk, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(`{"name":"客厅平板"}`))
		require.NoError(t, err)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(gbk)))

		assert.Equal(t, `{"name":"客厅平板"}`, w.Body.String())
	})

	t.Run("空请求体", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestNormalizeUTF8(t *testing.T) {
	assert.Equal(t, []byte("abc"), normalizeUTF8([]byte("abc")))
	assert.Empty(t, normalizeUTF8(nil))
}
