package prestation_test

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"residadmin/pkg/gateway"
	"residadmin/pkg/prestation"
	"residadmin/pkg/prestation/mocks"
)

func resetMock(m *mocks.Requester) {
	m.ExpectedCalls = nil
	m.Calls = nil
}

var (
	mockAPI *mocks.Requester
	service *prestation.PrestationService
	ctx     = context.Background()
)

func TestMain(m *testing.M) {
	mockAPI = new(mocks.Requester)
	service = prestation.NewService(mockAPI)

	code := m.Run()
	os.Exit(code)
}

func int64p(v int64) *int64 { return &v }

func TestGetAll(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		defer resetMock(mockAPI)

		mockAPI.On("Do", ctx, http.MethodGet, "/api/prestation-types", url.Values(nil), nil, mock.Anything).
			Return(nil).
			Run(func(args mock.Arguments) {
				out := args.Get(5).(*[]prestation.PrestationType)
				*out = []prestation.PrestationType{{ID: int64p(1), Code: "EAU", Description: "Eau"}}
			})

		types, err := service.GetAll(ctx)

		require.NoError(t, err)
		require.Len(t, types, 1)
		assert.Equal(t, "EAU", types[0].Code)
		mockAPI.AssertExpectations(t)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		defer resetMock(mockAPI)

		mockAPI.On("Do", ctx, http.MethodGet, "/api/prestation-types", url.Values(nil), nil, mock.Anything).Return(nil)

		types, err := service.GetAll(ctx)

		require.NoError(t, err)
		assert.NotNil(t, types)
		assert.Empty(t, types)
	})

	t.Run("unauthorized", func(t *testing.T) {
		defer resetMock(mockAPI)

		mockAPI.On("Do", ctx, http.MethodGet, "/api/prestation-types", mock.Anything, mock.Anything, mock.Anything).
			Return(&gateway.ResponseError{StatusCode: http.StatusUnauthorized})

		_, err := service.GetAll(ctx)

		assert.ErrorIs(t, err, gateway.ErrUnauthorized)
	})
}

func TestGetByCode(t *testing.T) {
	t.Run("escapes code", func(t *testing.T) {
		defer resetMock(mockAPI)

		mockAPI.On("Do", ctx, http.MethodGet, "/api/prestation-types/A%2FB", url.Values(nil), nil, mock.Anything).
			Return(nil).
			Run(func(args mock.Arguments) {
				out := args.Get(5).(*prestation.PrestationType)
				out.Code = "A/B"
			})

		p, err := service.GetByCode(ctx, " A/B ")

		require.NoError(t, err)
		assert.Equal(t, "A/B", p.Code)
		mockAPI.AssertExpectations(t)
	})

	t.Run("empty code", func(t *testing.T) {
		defer resetMock(mockAPI)

		_, err := service.GetByCode(ctx, "")

		assert.ErrorIs(t, err, prestation.ErrInvalid)
		assert.Empty(t, mockAPI.Calls)
	})

	t.Run("not found", func(t *testing.T) {
		defer resetMock(mockAPI)

		mockAPI.On("Do", ctx, http.MethodGet, "/api/prestation-types/NOPE", mock.Anything, mock.Anything, mock.Anything).
			Return(&gateway.ResponseError{StatusCode: http.StatusNotFound})

		_, err := service.GetByCode(ctx, "NOPE")

		assert.ErrorIs(t, err, gateway.ErrValidation)
	})
}

func TestCreate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		defer resetMock(mockAPI)

		want := prestation.PrestationType{Code: "GAZ", Description: "Gaz"}
		mockAPI.On("Do", ctx, http.MethodPost, "/api/prestation-types", url.Values(nil), want, mock.Anything).
			Return(nil).
			Run(func(args mock.Arguments) {
				out := args.Get(5).(*prestation.PrestationType)
				*out = prestation.PrestationType{ID: int64p(7), Code: "GAZ", Description: "Gaz"}
			})

		created, err := service.Create(ctx, &prestation.PrestationType{ID: int64p(99), Code: " GAZ ", Description: "Gaz"})

		require.NoError(t, err)
		assert.Equal(t, int64(7), *created.ID)
		mockAPI.AssertExpectations(t)
	})

	t.Run("invalid", func(t *testing.T) {
		defer resetMock(mockAPI)

		for _, p := range []*prestation.PrestationType{nil, {Code: "X"}, {Description: "x"}, {Code: " ", Description: " "}} {
			_, err := service.Create(ctx, p)
			assert.ErrorIs(t, err, prestation.ErrInvalid)
		}
		assert.Empty(t, mockAPI.Calls)
	})
}

func TestUpdate(t *testing.T) {
	defer resetMock(mockAPI)

	want := prestation.PrestationType{ID: int64p(3), Code: "EAU", Description: "Eau froide"}
	mockAPI.On("Do", ctx, http.MethodPut, "/api/prestation-types/3", url.Values(nil), want, mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			out := args.Get(5).(*prestation.PrestationType)
			*out = want
		})

	updated, err := service.Update(ctx, 3, &prestation.PrestationType{Code: "EAU", Description: "Eau froide"})

	require.NoError(t, err)
	assert.Equal(t, "Eau froide", updated.Description)
	mockAPI.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		defer resetMock(mockAPI)

		mockAPI.On("Do", ctx, http.MethodDelete, "/api/prestation-types/4", url.Values(nil), nil, nil).Return(nil)

		assert.NoError(t, service.Delete(ctx, 4))
		mockAPI.AssertExpectations(t)
	})

	t.Run("server failure", func(t *testing.T) {
		defer resetMock(mockAPI)

		mockAPI.On("Do", ctx, http.MethodDelete, "/api/prestation-types/4", mock.Anything, mock.Anything, mock.Anything).
			Return(&gateway.ResponseError{StatusCode: http.StatusInternalServerError})

		assert.ErrorIs(t, service.Delete(ctx, 4), gateway.ErrServer)
	})
}
