package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hugh/go-roster/internal/api/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlash_RoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	setFlash(rec, dto.Flash{Kind: dto.FlashSuccess, Message: "Employee deleted successfully."}, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])
	out := httptest.NewRecorder()

	f := popFlash(out, req)
	require.NotNil(t, f)
	assert.Equal(t, dto.FlashSuccess, f.Kind)
	assert.Equal(t, "Employee deleted successfully.", f.Message)

	cleared := out.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestPopFlash_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not base64", "%%%"},
		{"not json", "bm90IGpzb24"},
		{"empty message", "eyJraW5kIjoic3VjY2VzcyJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: flashCookieName, Value: tt.value})
			assert.Nil(t, popFlash(httptest.NewRecorder(), req))
		})
	}
}

func TestPopFlash_None(t *testing.T) {
	rec := httptest.NewRecorder()
	assert.Nil(t, popFlash(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Empty(t, rec.Result().Cookies())
}
