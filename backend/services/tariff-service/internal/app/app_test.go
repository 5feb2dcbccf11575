package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meterbill/backend/libs/tariff"
	"meterbill/backend/services/tariff-service/internal/config"
	"meterbill/backend/services/tariff-service/internal/models"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestNewRejectsMalformedSchedules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	doc := "schedules:\n  residential:\n    bands:\n      - {min: 1, max: 100, rate: 1}\n      - {min: 150, rate: 2}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg := memoryConfig(t)
	cfg.Tariff.SchedulesFile = path

	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.ErrorIs(t, err, tariff.ErrInvalidSchedule)
}

func TestLoadTableDefaults(t *testing.T) {
	table, err := LoadTable("  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"commercial", "factory", "residential"}, table.Classes())
	assert.Equal(t, map[string]tariff.Kind{
		tariff.ClassCommercial:  tariff.KindFlat,
		tariff.ClassFactory:     tariff.KindFlat,
		tariff.ClassResidential: tariff.KindTiered,
	}, ScheduleKinds(table))
}

func TestAppEndToEnd(t *testing.T) {
	application, err := New(context.Background(), memoryConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(application.Close)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	feed, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws/calculations", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = feed.Close() })
	require.Eventually(t, func() bool { return application.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(srv.URL+"/api/calculate/kw-to-money?meter_type=residential&previous_reading=0&current_reading=3000", "", nil)
	require.NoError(t, err)
	var quote models.CostQuote
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&quote))
	resp.Body.Close()
	assert.Equal(t, 31128.0, quote.TotalCost)
	assert.Len(t, quote.Breakdown, 5)

	resp, err = http.Post(srv.URL+"/api/calculate/money-to-kw?meter_type=residential&amount=31128", "", nil)
	require.NoError(t, err)
	var energy models.EnergyQuote
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&energy))
	resp.Body.Close()
	assert.Equal(t, 3000.0, energy.TotalKW)

	body := `{"calculation_type":"kw_to_money","meter_type":"residential","consumption":3000,"total_cost":31128}`
	resp, err = http.Post(srv.URL+"/api/calculate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stored models.Calculation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stored))
	resp.Body.Close()

	require.NoError(t, feed.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := feed.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), stored.ID)

	resp, err = http.Get(srv.URL + "/api/calculations")
	require.NoError(t, err)
	var calcs []models.Calculation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&calcs))
	resp.Body.Close()
	require.Len(t, calcs, 1)
	assert.Equal(t, 31128.0, *calcs[0].TotalCost)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.HTTP.Port = "127.0.0.1:0"

	application, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(application.Close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestOriginChecker(t *testing.T) {
	assert.Nil(t, originChecker([]string{"http://a.test", "*"}))

	check := originChecker([]string{"http://a.test/"})
	req := httptest.NewRequest(http.MethodGet, "/api/ws/calculations", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://a.test")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://b.test")
	assert.False(t, check(req))
}
