package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	services "github.com/magabrotheeeer/gkai/internal/services/auth"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "validation",
			err:        fmt.Errorf("op: %w", &services.ValidationError{Reason: "Invalid email format"}),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid email format",
		},
		{
			name:       "email conflict",
			err:        fmt.Errorf("op: %w", &services.ConflictError{Field: services.FieldEmail}),
			wantStatus: http.StatusConflict,
			wantMsg:    "Email already in use",
		},
		{
			name:       "username conflict",
			err:        &services.ConflictError{Field: services.FieldUsername},
			wantStatus: http.StatusConflict,
			wantMsg:    "Username already taken",
		},
		{
			name:       "invalid credentials",
			err:        fmt.Errorf("op: %w", services.ErrInvalidCredentials),
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Invalid credentials",
		},
		{
			name:       "authentication required",
			err:        fmt.Errorf("op: %w: %w", services.ErrAuthenticationRequired, errors.New("token is expired")),
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Authentication required",
		},
		{
			name:       "forbidden",
			err:        services.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantMsg:    "Admin access required",
		},
		{
			name:       "not found",
			err:        services.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "User not found",
		},
		{
			name:       "unknown error is hidden",
			err:        errors.New("pq: connection refused to 10.0.0.1"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.wantMsg, resp.Error)
			assert.False(t, resp.Success)
		})
	}
}

func TestSuccess_JSON(t *testing.T) {
	b, err := json.Marshal(Success())
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"OK","success":true}`, string(b))

	b, err = json.Marshal(Error("boom"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"Error","error":"boom"}`, string(b))
}

func TestValidationError(t *testing.T) {
	type req struct {
		EmailOrUsername string `json:"emailOrUsername" validate:"required"`
		Password        string `json:"password" validate:"required"`
	}
	err := validator.New().Struct(req{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	resp := ValidationError(verrs)
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "field EmailOrUsername is a required field, field Password is a required field", resp.Error)
}
