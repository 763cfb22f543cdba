package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/voyagen/xtreamvault/internal/cache"
	"github.com/voyagen/xtreamvault/internal/logging"
	"github.com/voyagen/xtreamvault/internal/metrics"
	"github.com/voyagen/xtreamvault/internal/models"
	"github.com/voyagen/xtreamvault/internal/service"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) AllCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockService) AllChannels(ctx context.Context) ([]models.LiveStream, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LiveStream), args.Error(1)
}

func (m *MockService) Refresh(ctx context.Context) (service.Result, error) {
	args := m.Called()
	return args.Get(0).(service.Result), args.Error(1)
}

func (m *MockService) ForceRefresh(ctx context.Context) (service.Result, error) {
	args := m.Called()
	return args.Get(0).(service.Result), args.Error(1)
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	srv := New(new(MockService), "0", nil, nil, logging.Discard())
	rec := do(t, srv, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListCategories(t *testing.T) {
	svc := new(MockService)
	svc.On("AllCategories").Return([]models.Category{{ID: 1, Name: "News"}}, nil).Once()
	svc.On("AllCategories").Return(nil, nil).Once()
	srv := New(svc, "0", nil, nil, logging.Discard())

	rec := do(t, srv, http.MethodGet, "/api/categories")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"category_id":1,"category_name":"News","parent_id":0}]`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/categories")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListChannels(t *testing.T) {
	cat := int64(1)
	svc := new(MockService)
	svc.On("AllChannels").Return([]models.LiveStream{{
		Num: 1, Name: "Channel A", StreamType: "live", StreamID: 0,
		StreamIcon: "http://x/a.png", EPGChannelID: "n1", CategoryID: &cat,
		DirectSource: "http://stream/a.m3u8",
	}}, nil)
	srv := New(svc, "0", nil, nil, logging.Discard())

	rec := do(t, srv, http.MethodGet, "/api/channels")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"num":1,"name":"Channel A","stream_type":"live","stream_id":0,
		"stream_icon":"http://x/a.png","epg_channel_id":"n1","added":null,"category_id":1,
		"tv_archive":0,"direct_source":"http://stream/a.m3u8","tv_archive_duration":0}]`, rec.Body.String())
}

func TestListChannels_error(t *testing.T) {
	svc := new(MockService)
	svc.On("AllChannels").Return(nil, errors.New("db down"))
	srv := New(svc, "0", nil, nil, logging.Discard())

	rec := do(t, srv, http.MethodGet, "/api/channels")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "db down", apiErr.Detail)
}

func TestRefresh_inline(t *testing.T) {
	svc := new(MockService)
	svc.On("Refresh").Return(service.Result{Skipped: true}, nil).Once()
	svc.On("ForceRefresh").Return(service.Result{ChannelsCreated: 2}, nil).Once()
	srv := New(svc, "0", nil, nil, logging.Discard())

	rec := do(t, srv, http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusOK, rec.Code)
	var res service.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Skipped)

	rec = do(t, srv, http.MethodPost, "/api/refresh?force=true")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.ChannelsCreated)
	svc.AssertExpectations(t)
}

func TestRefresh_conflictAndBadRequest(t *testing.T) {
	svc := new(MockService)
	svc.On("Refresh").Return(service.Result{}, service.ErrRefreshRunning)
	srv := New(svc, "0", nil, nil, logging.Discard())

	assert.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/refresh").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/refresh?force=maybe").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, srv, http.MethodGet, "/api/refresh").Code)
}

func TestRefresh_queued(t *testing.T) {
	mr := miniredis.RunT(t)
	rds, err := cache.New("redis://" + mr.Addr())
	require.NoError(t, err)
	defer rds.Close()

	svc := new(MockService)
	srv := New(svc, "0", rds, nil, logging.Discard())

	rec := do(t, srv, http.MethodPost, "/api/refresh?force=1")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/health")
	assert.JSONEq(t, `{"status":"ok","refresh_running":false}`, rec.Body.String())

	job, err := cache.Dequeue(context.Background(), rds, cache.RefreshQueue, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.True(t, job.Force)
	svc.AssertNotCalled(t, "ForceRefresh")
}

func TestMetricsAndDocs(t *testing.T) {
	srv := New(new(MockService), "0", nil, metrics.New(), logging.Discard())

	rec := do(t, srv, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "xtreamvault_channels_created_total")

	rec = do(t, srv, http.MethodGet, "/api/docs/openapi.yaml")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "openapi:")
}

func TestWithLogging(t *testing.T) {
	srv := New(new(MockService), "0", nil, nil, logging.Discard())
	rec := do(t, srv.withLogging(srv), http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}
