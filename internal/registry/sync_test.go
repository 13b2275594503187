package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fleet-dispatch-backend/config"
	"fleet-dispatch-backend/internal/model"
	"fleet-dispatch-backend/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Vehicle{}, &model.Driver{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return store.NewGormStore(db)
}

func feedConfig(url string) *config.Config {
	cfg := &config.Config{}
	cfg.Registry.Enabled = true
	cfg.Registry.Request.URL = url
	cfg.Registry.Request.Headers = map[string]string{"Authorization": "Bearer test-token"}
	return cfg
}

func TestSyncOnce(t *testing.T) {
	s := newTestStore(t)

	// Mock upstream registry server. The authorization header configured on
	// the service must be forwarded on every fetch.
	var sawAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")

		feed := FeedResponse{}
		feed.Data.Vehicles = []store.VehicleItem{
			{ID: "v1", VehicleNumber: "KA-01-1234", VehicleType: "sedan", Capacity: 4, Active: true},
			{ID: "v2", VehicleNumber: "KA-02-5678", VehicleType: "van", Capacity: 8, Active: false},
		}
		feed.Data.Drivers = []store.DriverItem{
			{ID: "d1", Name: "Ravi Kumar", Phone: "9900011111", LicenseNo: "KA-DL-001", Active: true},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(feed))
	}))
	defer server.Close()

	service := NewService(feedConfig(server.URL), s)
	service.SyncOnce(context.Background())

	assert.Equal(t, "Bearer test-token", sawAuth)

	var vehicles []model.Vehicle
	require.NoError(t, s.DB().Order("id").Find(&vehicles).Error)
	require.Len(t, vehicles, 2)
	assert.Equal(t, "KA-01-1234", vehicles[0].VehicleNumber)
	assert.True(t, vehicles[0].Active)
	assert.False(t, vehicles[1].Active)
	assert.WithinDuration(t, time.Now().UTC(), vehicles[0].SyncedAt, 5*time.Second)

	var drivers []model.Driver
	require.NoError(t, s.DB().Find(&drivers).Error)
	require.Len(t, drivers, 1)
	assert.Equal(t, "KA-DL-001", drivers[0].LicenseNo)
}

func TestSyncOnceLeavesMirrorOnFailure(t *testing.T) {
	s := newTestStore(t)

	// Pre-populate the mirror so the failure cases have something to lose.
	require.NoError(t, s.DB().Create(&model.Vehicle{
		ID: "v1", VehicleNumber: "KA-01-1234", Active: true, SyncedAt: time.Now().UTC(),
	}).Error)

	assertMirrorIntact := func(t *testing.T) {
		var count int64
		require.NoError(t, s.DB().Model(&model.Vehicle{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		var v model.Vehicle
		require.NoError(t, s.DB().First(&v, "id = ?", "v1").Error)
		assert.True(t, v.Active)
	}

	t.Run("upstream 500", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		NewService(feedConfig(server.URL), s).SyncOnce(context.Background())
		assertMirrorIntact(t)
	})

	t.Run("non-zero application code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(FeedResponse{Code: 42})
		}))
		defer server.Close()

		NewService(feedConfig(server.URL), s).SyncOnce(context.Background())
		assertMirrorIntact(t)
	})

	t.Run("empty feed skips the upsert", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(FeedResponse{})
		}))
		defer server.Close()

		NewService(feedConfig(server.URL), s).SyncOnce(context.Background())
		assertMirrorIntact(t)
	})
}
