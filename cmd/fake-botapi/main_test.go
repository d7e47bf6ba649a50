package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	t.Parallel()

	handler := newHandler(zerolog.Nop())

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantOK     bool
	}{
		{name: "send message", target: "/bot123:abc/sendMessage?chat_id=42&text=hi", wantStatus: http.StatusOK, wantOK: true},
		{name: "send message without chat", target: "/bot123:abc/sendMessage?text=hi", wantStatus: http.StatusBadRequest},
		{name: "get me", target: "/bot123:abc/getMe", wantStatus: http.StatusOK, wantOK: true},
		{name: "unknown method", target: "/bot123:abc/banChatMember", wantStatus: http.StatusNotFound},
		{name: "not a bot path", target: "/health", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.target, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp apiResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantOK, resp.OK)
		})
	}
}
