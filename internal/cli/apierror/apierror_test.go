package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromStatus_Classification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    Kind
		wantSent    error
		wantMessage string
	}{
		{
			name:        "bad request uses server detail",
			status:      http.StatusBadRequest,
			body:        `{"detail":"username already exists"}`,
			wantKind:    KindBadRequest,
			wantSent:    ErrBadRequest,
			wantMessage: "username already exists",
		},
		{
			name:        "bad request without detail",
			status:      http.StatusBadRequest,
			body:        ``,
			wantKind:    KindBadRequest,
			wantSent:    ErrBadRequest,
			wantMessage: "bad request parameters",
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			body:        `{"detail":"token expired"}`,
			wantKind:    KindUnauthorized,
			wantSent:    ErrUnauthorized,
			wantMessage: "unauthorized, please log in again",
		},
		{
			name:        "forbidden",
			status:      http.StatusForbidden,
			wantKind:    KindForbidden,
			wantSent:    ErrForbidden,
			wantMessage: "you do not have permission to access this resource",
		},
		{
			name:        "not found",
			status:      http.StatusNotFound,
			wantKind:    KindNotFound,
			wantSent:    ErrNotFound,
			wantMessage: "the requested resource does not exist",
		},
		{
			name:        "server error",
			status:      http.StatusInternalServerError,
			body:        `{"detail":"db down"}`,
			wantKind:    KindServerError,
			wantSent:    ErrServerError,
			wantMessage: "server error, please try again later",
		},
		{
			name:        "other status with detail",
			status:      http.StatusConflict,
			body:        `{"detail":"already matched"}`,
			wantKind:    KindUnclassified,
			wantSent:    ErrUnclassified,
			wantMessage: "request failed: already matched",
		},
		{
			name:        "other status without detail",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantKind:    KindUnclassified,
			wantSent:    ErrUnclassified,
			wantMessage: "request failed: unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.status, []byte(tt.body))

			require.Equal(t, tt.wantKind, err.Kind)
			require.Equal(t, tt.status, err.Status)
			require.Equal(t, tt.wantMessage, err.Message)
			require.ErrorIs(t, err, tt.wantSent)
		})
	}
}

func TestError_IsDoesNotCrossKinds(t *testing.T) {
	err := FromStatus(http.StatusForbidden, nil)

	require.ErrorIs(t, err, ErrForbidden)
	require.NotErrorIs(t, err, ErrUnauthorized)
}

func TestError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("failed to list jobs: %w", FromStatus(http.StatusUnauthorized, nil))

	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, KindUnauthorized, KindOf(err))
	require.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestNetworkAndConstruction(t *testing.T) {
	netErr := Network(context.DeadlineExceeded)
	require.ErrorIs(t, netErr, ErrNetwork)
	require.ErrorIs(t, netErr, context.DeadlineExceeded)
	require.Zero(t, netErr.Status)

	buildErr := Construction(errors.New("bad url"))
	require.ErrorIs(t, buildErr, ErrRequestConstruction)
	require.NotErrorIs(t, buildErr, ErrNetwork)
	require.Contains(t, buildErr.Error(), "bad url")
}

func TestParseDetail(t *testing.T) {
	require.Equal(t, "", ParseDetail(nil))
	require.Equal(t, "", ParseDetail([]byte(`not json`)))
	require.Equal(t, "", ParseDetail([]byte(`{"error":"x"}`)))
	require.Equal(t, "", ParseDetail([]byte(`{"detail":null}`)))
	require.Equal(t, "token expired", ParseDetail([]byte(`{"detail":"token expired"}`)))
	require.Equal(t,
		"field required; value is not a valid email address",
		ParseDetail([]byte(`{"detail":[{"loc":["body","username"],"msg":"field required"},{"msg":"value is not a valid email address"}]}`)),
	)
}
