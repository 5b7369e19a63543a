package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/clouddrive/pkg/reqid"
)

func serve(header string) (ctxID, respID string) {
	h := reqid.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctxID = reqid.FromCtx(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(reqid.Header, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return ctxID, rec.Header().Get(reqid.Header)
}

func TestMiddleware_Generates(t *testing.T) {
	ctxID, respID := serve("")
	assert.Len(t, ctxID, 20)
	assert.Equal(t, ctxID, respID)
}

func TestMiddleware_ReusesUpstream(t *testing.T) {
	ctxID, respID := serve("gateway-42")
	assert.Equal(t, "gateway-42", ctxID)
	assert.Equal(t, "gateway-42", respID)
}

func TestMiddleware_RejectsOversized(t *testing.T) {
	ctxID, _ := serve(strings.Repeat("x", 500))
	assert.Len(t, ctxID, 20)
}
