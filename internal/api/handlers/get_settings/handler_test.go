package get_settings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	settingsRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/settings"
	"github.com/m04kA/SMC-ReservationService/internal/service/settings"
	"github.com/m04kA/SMC-ReservationService/internal/service/settings/models"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

type stubRepo struct {
	settings *domain.ReservationSettings
	err      error
}

func (r *stubRepo) Get(context.Context) (*domain.ReservationSettings, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.settings == nil {
		return nil, settingsRepo.ErrSettingsNotFound
	}
	cp := *r.settings
	return &cp, nil
}

func (r *stubRepo) Save(context.Context, *domain.ReservationSettings) error {
	return r.err
}

func TestHandle(t *testing.T) {
	stored := domain.DefaultSettings()
	stored.MaxTables = 4
	stored.ClosedDays = []string{"monday"}

	tests := []struct {
		name          string
		repo          *stubRepo
		status        int
		wantMaxTables int
	}{
		{"stored row", &stubRepo{settings: stored}, http.StatusOK, 4},
		{"defaults when no row", &stubRepo{}, http.StatusOK, domain.DefaultMaxTables},
		{"store unavailable", &stubRepo{err: settingsRepo.ErrUnavailable}, http.StatusServiceUnavailable, 0},
		{"repository failure", &stubRepo{err: errors.New("boom")}, http.StatusInternalServerError, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := settings.NewService(tt.repo, nil, nil, logger.Nop())
			rec := httptest.NewRecorder()
			NewHandler(svc, logger.Nop()).Handle(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))
			require.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusOK {
				return
			}

			var got models.SettingsResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantMaxTables, got.MaxTables)
			assert.NotNil(t, got.ClosedDays)
		})
	}
}
