package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/roomledger/internal/auth/token"
	"github.com/smallbiznis/roomledger/internal/clock"
	"github.com/smallbiznis/roomledger/internal/config"
	"github.com/smallbiznis/roomledger/internal/dbtest"
	electricityrepo "github.com/smallbiznis/roomledger/internal/electricity/repository"
	electricityservice "github.com/smallbiznis/roomledger/internal/electricity/service"
	landlordrepo "github.com/smallbiznis/roomledger/internal/landlord/repository"
	landlordservice "github.com/smallbiznis/roomledger/internal/landlord/service"
	"github.com/smallbiznis/roomledger/internal/observability"
	paymentrepo "github.com/smallbiznis/roomledger/internal/payment/repository"
	paymentservice "github.com/smallbiznis/roomledger/internal/payment/service"
	propertydomain "github.com/smallbiznis/roomledger/internal/property/domain"
	propertyrepo "github.com/smallbiznis/roomledger/internal/property/repository"
	propertyservice "github.com/smallbiznis/roomledger/internal/property/service"
	"github.com/smallbiznis/roomledger/internal/ratelimit"
	"github.com/smallbiznis/roomledger/internal/report/pdf"
	reportservice "github.com/smallbiznis/roomledger/internal/report/service"
	roomdomain "github.com/smallbiznis/roomledger/internal/room/domain"
	roomrepo "github.com/smallbiznis/roomledger/internal/room/repository"
	roomservice "github.com/smallbiznis/roomledger/internal/room/service"
	"github.com/smallbiznis/roomledger/internal/storage"
	tenantrepo "github.com/smallbiznis/roomledger/internal/tenant/repository"
	tenantservice "github.com/smallbiznis/roomledger/internal/tenant/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	engine   *gin.Engine
	db       *gorm.DB
	fixtures *dbtest.Fixtures
	property propertydomain.Property
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t)
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	log := zap.NewNop()
	cfg := config.Config{
		AppName:            "roomledger",
		HTTPAddr:           ":0",
		UploadDir:          t.TempDir(),
		UploadMaxBytes:     1 << 20,
		CORSAllowedOrigins: []string{"*"},
	}

	store, err := storage.NewLocalAt(cfg.UploadDir, log)
	require.NoError(t, err)
	tokens := token.NewManager([]byte("test-secret"), time.Hour, clk)

	landlords := landlordrepo.Provide()
	properties := propertyrepo.Provide()
	rooms := roomrepo.Provide()
	tenants := tenantrepo.Provide()
	payments := paymentrepo.Provide()
	readings := electricityrepo.Provide()

	paymentSvc := paymentservice.New(paymentservice.Params{
		DB: db, Log: log, GenID: dbtest.Node(t), Clock: clk,
		Repo: payments, TenantRepo: tenants, RoomRepo: rooms, PropertyRepo: properties,
	})

	engine := NewEngine(EngineParams{
		Cfg:    cfg,
		ObsCfg: observability.Config{LogLevel: "info"},
		Log:    log,
	})
	NewServer(ServerParams{
		Gin:          engine,
		Cfg:          cfg,
		Log:          log,
		Tokens:       tokens,
		LoginLimiter: ratelimit.NewLoginLimiter(ratelimit.NewMemoryBucket(clk), 1, time.Minute, 2, log),
		Documents:    store,
		LandlordSvc: landlordservice.New(landlordservice.Params{
			DB: db, Log: log, GenID: dbtest.Node(t), Clock: clk, Repo: landlords, Tokens: tokens,
		}),
		PropertySvc: propertyservice.New(propertyservice.Params{
			DB: db, Log: log, GenID: dbtest.Node(t), Clock: clk, Repo: properties, LandlordRepo: landlords,
		}),
		RoomSvc: roomservice.New(roomservice.Params{
			DB: db, Log: log, GenID: dbtest.Node(t), Clock: clk, Repo: rooms, PropertyRepo: properties, TenantRepo: tenants,
		}),
		TenantSvc: tenantservice.New(tenantservice.Params{
			DB: db, Log: log, GenID: dbtest.Node(t), Clock: clk, Cfg: cfg,
			Repo: tenants, RoomRepo: rooms, PropertyRepo: properties, Store: store,
		}),
		PaymentSvc: paymentSvc,
		ElectricitySvc: electricityservice.New(electricityservice.Params{
			DB: db, Log: log, GenID: dbtest.Node(t), Clock: clk,
			Billing: config.NewStaticBillingConfig(config.DefaultBillingConfig()),
			Repo:    readings, RoomRepo: rooms, PropertyRepo: properties, TenantRepo: tenants,
			Payments: paymentSvc,
		}),
		ReportSvc: reportservice.New(reportservice.Params{
			DB: db, Log: log, Clock: clk,
			PropertyRepo: properties, RoomRepo: rooms, ReadingRepo: readings, PaymentRepo: payments,
			Renderer: pdf.New(),
		}),
	})

	fixtures := dbtest.NewFixtures(t, db, dbtest.Node(t), now)
	property := fixtures.Property(fixtures.Landlord("owner@example.com").ID, "Lake View")
	return testServer{engine: engine, db: db, fixtures: fixtures, property: property}
}

func (ts testServer) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.10:40000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Data
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var resp struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Error
}

func TestWelcomeAndHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "roomledger")

	rec = ts.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/nowhere", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Type)
}

func TestLandlordLoginAndMe(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/landlords", map[string]any{
		"username":      "ravi",
		"email":         "Ravi@Example.com",
		"mobile_number": "9876543210",
		"password":      "s3cret-pass",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData(t, rec)
	assert.Equal(t, "ravi@example.com", created["email"])
	assert.NotContains(t, rec.Body.String(), "password")

	rec = ts.do(t, http.MethodPost, "/landlords", map[string]any{
		"username":      "ravi2",
		"email":         "ravi@example.com",
		"mobile_number": "9876543210",
		"password":      "s3cret-pass",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec).Type)

	rec = ts.do(t, http.MethodPost, "/landlords/login", map[string]any{
		"email":    "ravi@example.com",
		"password": "s3cret-pass",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decodeData(t, rec)
	accessToken, _ := login["access_token"].(string)
	require.NotEmpty(t, accessToken)
	assert.Equal(t, "Bearer", login["token_type"])

	rec = ts.do(t, http.MethodGet, "/landlords/me", nil, http.Header{"Authorization": {"Bearer " + accessToken}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, created["id"], decodeData(t, rec)["id"])

	rec = ts.do(t, http.MethodGet, "/landlords/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/landlords/me", nil, http.Header{"Authorization": {"Bearer not-a-token"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginIsThrottled(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]any{"username": "nobody", "password": "wrong-password"}
	for i := 0; i < 2; i++ {
		rec := ts.do(t, http.MethodPost, "/landlords/login", body, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := ts.do(t, http.MethodPost, "/landlords/login", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "too_many_requests", decodeError(t, rec).Type)
}

func TestRoomCreateAndDeleteTrackTotalRooms(t *testing.T) {
	ts := newTestServer(t)
	propertyID := ts.property.ID.String()

	rec := ts.do(t, http.MethodPost, "/rooms", map[string]any{
		"property_id": propertyID,
		"room_number": "101",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	roomID, _ := decodeData(t, rec)["id"].(string)
	require.NotEmpty(t, roomID)

	rec = ts.do(t, http.MethodGet, "/properties/"+propertyID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeData(t, rec)["total_rooms"])

	rec = ts.do(t, http.MethodPost, "/rooms", map[string]any{
		"property_id": propertyID,
		"room_number": "101",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Room number already exists in this property", decodeError(t, rec).Message)

	rec = ts.do(t, http.MethodGet, "/rooms/property/"+propertyID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	rec = ts.do(t, http.MethodDelete, "/rooms/"+roomID, nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/properties/"+propertyID, nil, nil)
	assert.EqualValues(t, 0, decodeData(t, rec)["total_rooms"])

	rec = ts.do(t, http.MethodGet, "/rooms/"+roomID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Room not found", decodeError(t, rec).Message)
}

func TestMalformedInputIsValidationError(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/rooms/abc", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "room_id", payload.Errors[0].Field)

	rec = ts.do(t, http.MethodPost, "/rooms", map[string]any{"property_id": ts.property.ID.String()}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload = decodeError(t, rec)
	require.NotEmpty(t, payload.Errors)
	assert.Equal(t, "room_number", payload.Errors[0].Field)
	assert.Equal(t, "required", payload.Errors[0].Code)

	rec = ts.do(t, http.MethodGet, "/payments/"+ts.property.ID.String()+"/13", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadingWithActiveTenantCreatesPayment(t *testing.T) {
	ts := newTestServer(t)
	room := ts.fixtures.Room(ts.property.ID, "A1")
	ts.fixtures.Tenant(room, "Asha", true)

	reading := map[string]any{
		"property_id":     ts.property.ID.String(),
		"room_number":     "A1",
		"last_reading":    100,
		"current_reading": 150,
		"rate":            10,
	}
	rec := ts.do(t, http.MethodPost, "/electricity", reading, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData(t, rec)
	assert.EqualValues(t, 50, created["consumption"])
	assert.EqualValues(t, 500, created["total_amount"])
	assert.NotEmpty(t, created["generated_payment_id"])

	rec = ts.do(t, http.MethodGet, "/payments/room/"+room.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payments := decodeList(t, rec)
	require.Len(t, payments, 1)
	assert.EqualValues(t, 500, payments[0]["payment"])
	assert.EqualValues(t, 3, payments[0]["month"])
	assert.EqualValues(t, 2025, payments[0]["year"])
	assert.Equal(t, false, payments[0]["is_paid"])

	reading["last_reading"] = 150
	reading["current_reading"] = 170
	rec = ts.do(t, http.MethodPost, "/electricity", reading, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	require.NoError(t, ts.db.Table("electricity_readings").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	rec = ts.do(t, http.MethodGet, "/electricity/"+ts.property.ID.String()+"/3?year=2025", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeData(t, rec)
	assert.EqualValues(t, 1, report["count"])
	assert.EqualValues(t, 500, report["total_amount"])
}

func TestReadingBelowLastIsRejected(t *testing.T) {
	ts := newTestServer(t)
	ts.fixtures.Room(ts.property.ID, "B2")

	rec := ts.do(t, http.MethodPost, "/electricity", map[string]any{
		"property_id":     ts.property.ID.String(),
		"room_number":     "B2",
		"last_reading":    200,
		"current_reading": 150,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec).Type)

	rec = ts.do(t, http.MethodPost, "/electricity", map[string]any{
		"property_id":     ts.property.ID.String(),
		"room_number":     "Z9",
		"current_reading": 150,
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Room not found", decodeError(t, rec).Message)
}

func TestBulkReadingsAcceptObjectOrArray(t *testing.T) {
	ts := newTestServer(t)
	ts.fixtures.Room(ts.property.ID, "C1")
	ts.fixtures.Room(ts.property.ID, "C2")
	propertyID := ts.property.ID.String()

	rec := ts.do(t, http.MethodPost, "/electricity/bulk", map[string]any{
		"entries": map[string]any{"property_id": propertyID, "room_number": "C1", "current_reading": 10},
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, decodeList(t, rec), 1)

	rec = ts.do(t, http.MethodPost, "/electricity/bulk", map[string]any{
		"entries": []map[string]any{
			{"property_id": propertyID, "room_number": "C1", "current_reading": 20},
			{"property_id": propertyID, "room_number": "C2", "current_reading": 5},
		},
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, decodeList(t, rec), 2)

	rec = ts.do(t, http.MethodPost, "/electricity/bulk", map[string]any{
		"entries": []map[string]any{
			{"property_id": propertyID, "room_number": "C1", "current_reading": 30},
			{"property_id": propertyID, "room_number": "missing", "current_reading": 5},
		},
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var count int64
	require.NoError(t, ts.db.Table("electricity_readings").Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestTenantUploadStoresDocuments(t *testing.T) {
	ts := newTestServer(t)
	room := ts.fixtures.Room(ts.property.ID, "D4")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := map[string]string{
		"property_id":      ts.property.ID.String(),
		"assigned_room_id": room.ID.String(),
		"name":             "Meera",
		"email":            "meera@example.com",
		"mobile_number":    "9000011111",
		"move_in_date":     "2025-03-01",
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("aadhar_photo", "id-card.PNG")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/tenants/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	tenant := decodeData(t, rec)
	photo, _ := tenant["aadhar_photo"].(string)
	require.True(t, strings.HasPrefix(photo, storage.PublicPrefix+"/tenants/"), photo)
	assert.True(t, strings.HasSuffix(photo, ".png"), photo)

	rec = ts.do(t, http.MethodGet, photo, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())

	var stored roomdomain.Room
	require.NoError(t, ts.db.First(&stored, "id = ?", room.ID).Error)
	assert.True(t, stored.IsOccupied)

	rec = ts.do(t, http.MethodPost, "/tenants", map[string]any{
		"property_id":      ts.property.ID.String(),
		"assigned_room_id": room.ID.String(),
		"name":             "Second",
		"email":            "second@example.com",
		"mobile_number":    "9000022222",
		"move_in_date":     "2025-03-02",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Room is already occupied", decodeError(t, rec).Message)
}

func TestMonthlyStatementIsPDF(t *testing.T) {
	ts := newTestServer(t)
	room := ts.fixtures.Room(ts.property.ID, "E5")
	ts.fixtures.Tenant(room, "Kiran", true)

	rec := ts.do(t, http.MethodPost, "/electricity", map[string]any{
		"property_id":     ts.property.ID.String(),
		"room_number":     "E5",
		"current_reading": 40,
		"rate":            5,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/properties/"+ts.property.ID.String()+"/3?year=2025", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	details := decodeData(t, rec)
	rooms, _ := details["rooms"].([]any)
	assert.Len(t, rooms, 1)

	rec = ts.do(t, http.MethodGet, "/properties/"+ts.property.ID.String()+"/3/statement?year=2025", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestMonthlyDetailsWithoutRoomsIsNotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/properties/"+ts.property.ID.String()+"/3", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No rooms found for this property", decodeError(t, rec).Message)
}
