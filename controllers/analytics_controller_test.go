package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salescrm/crm_backend/models"
)

// testClient returns a driver client that never dials; the validation paths
// under test reject the request before any query is issued.
func testClient(t *testing.T) *mongo.Client {
	t.Helper()
	client, err := mongo.Connect(context.Background(), options.Client().
		ApplyURI("mongodb://localhost:27017").
		SetServerSelectionTimeout(1))
	require.NoError(t, err)
	t.Cleanup(func() { client.Disconnect(context.Background()) })
	return client
}

func TestGetAnalyticsRejectsUnknownRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/analytics?userRole=director&userId=u1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	controller := NewAnalyticsController(testClient(t))
	require.NoError(t, controller.GetAnalytics(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.AnalyticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "validation_error", resp.Error)
	assert.Contains(t, resp.Message, "userRole")
}

func TestGetAnalyticsRequiresUserIDForSalesman(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/analytics?userRole=salesman", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	controller := NewAnalyticsController(testClient(t))
	require.NoError(t, controller.GetAnalytics(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAnalyticsSetsNoStore(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/analytics?userRole=bogus", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	controller := NewAnalyticsController(testClient(t))
	require.NoError(t, controller.GetAnalytics(c))

	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestGetUnifiedDataRejectsBadLimit(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/unified-data?userRole=manager&limit=abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	controller := NewUnifiedDataController(testClient(t))
	require.NoError(t, controller.GetUnifiedData(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.UnifiedDataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "limit")
}

func TestGetUnifiedDataRejectsNegativeOffset(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/unified-data?userRole=manager&offset=-5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	controller := NewUnifiedDataController(testClient(t))
	require.NoError(t, controller.GetUnifiedData(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUnifiedDataRejectsUnknownRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/unified-data?userRole=nobody", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	controller := NewUnifiedDataController(testClient(t))
	require.NoError(t, controller.GetUnifiedData(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
