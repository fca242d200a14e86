package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/fintrackhq/fintrack/internal/http/handlers"
)

type bindTarget struct {
	Email string `json:"email" binding:"required,email"`
	Limit int    `json:"limit" binding:"omitempty,min=1,max=100"`
}

func newBindRouter() *gin.Engine {
	r := gin.New()
	r.POST("/bind", func(c *gin.Context) {
		var in bindTarget
		if !handlers.BindJSON(c, &in) {
			return
		}
		c.JSON(http.StatusOK, in)
	})
	return r
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string // json-tag name expected in the error details
		wantRule   string
	}{
		{
			name:       "valid",
			body:       `{"email": "a@b.com", "limit": 10}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing_required_uses_json_tag",
			body:       `{"limit": 10}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "email",
			wantRule:   "required",
		},
		{
			name:       "range_violation_reports_param",
			body:       `{"email": "a@b.com", "limit": 500}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "limit",
			wantRule:   "max",
		},
		{
			name:       "type_mismatch",
			body:       `{"email": "a@b.com", "limit": "ten"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "limit",
			wantRule:   "type",
		},
		{
			name:       "broken_json",
			body:       `{"email": `,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newBindRouter()

			req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantField == "" {
				return
			}

			var resp struct {
				Error struct {
					Details struct {
						Fields []handlers.FieldError `json:"fields"`
					} `json:"details"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v, body=%s", err, w.Body.String())
			}

			found := false
			for _, fe := range resp.Error.Details.Fields {
				if fe.Field == tt.wantField && fe.Rule == tt.wantRule {
					found = true
				}
			}

			if !found {
				t.Fatalf("no field error %s/%s in %s", tt.wantField, tt.wantRule, w.Body.String())
			}
		})
	}
}
