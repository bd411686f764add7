package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/waybill/internal/models"
	"github.com/zulandar/waybill/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testRouter(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := store.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	st := store.New(db)
	return NewRouter(st, nil), st
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestSession_Lifecycle(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/session", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/session = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Session models.OperatingSession `json:"session"`
	}
	decode(t, w, &resp)
	if resp.Session.CurrentSessionNumber != 1 {
		t.Errorf("first session = %d, want 1", resp.Session.CurrentSessionNumber)
	}

	w = doJSON(t, router, http.MethodPost, "/api/session/advance", map[string]string{
		"description": "Spring ops night",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("advance = %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &resp)
	if resp.Session.CurrentSessionNumber != 2 {
		t.Errorf("advanced session = %d, want 2", resp.Session.CurrentSessionNumber)
	}
	if resp.Session.Description != "Spring ops night" {
		t.Errorf("description = %q", resp.Session.Description)
	}

	w = doJSON(t, router, http.MethodPost, "/api/session/rollback", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("rollback = %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &resp)
	if resp.Session.CurrentSessionNumber != 1 {
		t.Errorf("rolled back session = %d, want 1", resp.Session.CurrentSessionNumber)
	}

	// A second rollback has no snapshot to restore.
	w = doJSON(t, router, http.MethodPost, "/api/session/rollback", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("second rollback = %d, want 409: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPut, "/api/session/description", map[string]string{
		"description": "Renamed",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("describe = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPut, "/api/session/description", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty description = %d, want 400", w.Code)
	}
}

func TestRefData_CRUD(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/stations", map[string]string{"name": "Milltown"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create station = %d: %s", w.Code, w.Body.String())
	}
	var station map[string]interface{}
	decode(t, w, &station)
	id, _ := station["id"].(string)
	if len(id) != 12 {
		t.Errorf("minted id = %q, want 12 hex chars", id)
	}

	w = doJSON(t, router, http.MethodGet, "/api/stations/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get station = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/stations", nil)
	var list []map[string]interface{}
	decode(t, w, &list)
	if len(list) != 1 {
		t.Errorf("list = %d stations, want 1", len(list))
	}

	w = doJSON(t, router, http.MethodPut, "/api/stations/"+id, map[string]string{"name": "Milltown Jct"})
	if w.Code != http.StatusOK {
		t.Fatalf("update station = %d: %s", w.Code, w.Body.String())
	}
	var updated map[string]interface{}
	decode(t, w, &updated)
	if updated["name"] != "Milltown Jct" {
		t.Errorf("updated name = %v", updated["name"])
	}

	// Blank name fails the schema check.
	w = doJSON(t, router, http.MethodPut, "/api/stations/"+id, map[string]string{"name": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank name = %d, want 400", w.Code)
	}

	// An industry at the station blocks deletion.
	w = doJSON(t, router, http.MethodPost, "/api/industries", map[string]interface{}{
		"name": "Pine Mill", "stationId": id,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create industry = %d: %s", w.Code, w.Body.String())
	}
	var industry map[string]interface{}
	decode(t, w, &industry)

	w = doJSON(t, router, http.MethodDelete, "/api/stations/"+id, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("delete referenced station = %d, want 409: %s", w.Code, w.Body.String())
	}

	indID, _ := industry["id"].(string)
	w = doJSON(t, router, http.MethodDelete, "/api/industries/"+indID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete industry = %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodDelete, "/api/stations/"+id, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete station = %d, want 204: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/stations/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get deleted station = %d, want 404", w.Code)
	}
}

func TestRefData_IndustryStationResolved(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/industries", map[string]interface{}{
		"name": "Pine Mill", "stationId": "s-none",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("industry with unknown station = %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestRefData_AarTypeCodeConflict(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/aar-types", map[string]string{
		"code": "XM", "description": "Boxcar",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create aar type = %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodPost, "/api/aar-types", map[string]string{
		"code": "XM", "description": "Boxcar again",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate code = %d, want 409: %s", w.Code, w.Body.String())
	}
}

func TestRefData_LocomotiveUniqueness(t *testing.T) {
	router, _ := testRouter(t)

	loco := map[string]interface{}{
		"reportingMarks": "ATSF", "reportingNumber": "1234",
		"manufacturer": "Kato", "isDcc": true, "dccAddress": 42,
		"homeYard": "yard-1", "isInService": true,
	}
	w := doJSON(t, router, http.MethodPost, "/api/locomotives", loco)
	if w.Code != http.StatusCreated {
		t.Fatalf("create locomotive = %d: %s", w.Code, w.Body.String())
	}
	var created map[string]interface{}
	decode(t, w, &created)
	id, _ := created["id"].(string)

	// Same reporting identity again.
	w = doJSON(t, router, http.MethodPost, "/api/locomotives", loco)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate identity = %d, want 409: %s", w.Code, w.Body.String())
	}

	// Different identity, same DCC address.
	w = doJSON(t, router, http.MethodPost, "/api/locomotives", map[string]interface{}{
		"reportingMarks": "SP", "reportingNumber": "4449",
		"manufacturer": "Athearn", "isDcc": true, "dccAddress": 42,
		"homeYard": "yard-1", "isInService": true,
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate dcc address = %d, want 409: %s", w.Code, w.Body.String())
	}

	// Updating a locomotive does not collide with itself.
	w = doJSON(t, router, http.MethodPut, "/api/locomotives/"+id, map[string]interface{}{
		"model": "F7A",
	})
	if w.Code != http.StatusOK {
		t.Errorf("self update = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestRefData_CarIdentityConflict(t *testing.T) {
	router, _ := testRouter(t)

	car := map[string]interface{}{
		"reportingMarks": "ATSF", "reportingNumber": "1001",
		"carType": "aar-box", "homeYard": "yard-1",
		"currentIndustry": "yard-1", "isInService": true,
	}
	w := doJSON(t, router, http.MethodPost, "/api/cars", car)
	if w.Code != http.StatusCreated {
		t.Fatalf("create car = %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodPost, "/api/cars", car)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate identity = %d, want 409: %s", w.Code, w.Body.String())
	}
}

func TestRefData_RouteNameConflict(t *testing.T) {
	router, st := testRouter(t)
	ctx := context.Background()

	for coll, v := range map[string]interface{}{
		store.Stations:   models.Station{ID: "s1", Name: "Milltown"},
		store.Industries: models.Industry{ID: "yard-1", Name: "West Yard", StationID: "s1", IsYard: true},
	} {
		rec, err := models.ToRecord(v)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if _, err := st.Create(ctx, coll, rec); err != nil {
			t.Fatalf("seed %s: %v", coll, err)
		}
	}

	route := map[string]interface{}{
		"name": "Mill Turn", "originYard": "yard-1", "terminationYard": "yard-1",
		"stationSequence": []string{"s1"},
	}
	w := doJSON(t, router, http.MethodPost, "/api/routes", route)
	if w.Code != http.StatusCreated {
		t.Fatalf("create route = %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodPost, "/api/routes", route)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate route name = %d, want 409: %s", w.Code, w.Body.String())
	}
}

func TestOrders_EndToEnd(t *testing.T) {
	router, st := testRouter(t)
	ctx := context.Background()

	seed := func(coll string, v interface{}) {
		rec, err := models.ToRecord(v)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if _, err := st.Create(ctx, coll, rec); err != nil {
			t.Fatalf("seed %s: %v", coll, err)
		}
	}
	seed(store.Stations, models.Station{ID: "s1", Name: "Milltown"})
	seed(store.AarTypes, models.AarType{ID: "aar-box", Code: "XM"})
	seed(store.Industries, models.Industry{
		ID: "ind-mill", Name: "Pine Mill", StationID: "s1",
		CarDemandConfig: []models.DemandConfig{{
			GoodsID: "lumber", Direction: models.DirectionOutbound,
			CompatibleCarTypes: []string{"aar-box"}, CarsPerSession: 2, Frequency: 1,
		}},
	})

	w := doJSON(t, router, http.MethodPost, "/api/car-orders/generate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("generate = %d: %s", w.Code, w.Body.String())
	}
	var genRes struct {
		OrdersGenerated int               `json:"ordersGenerated"`
		Orders          []models.CarOrder `json:"orders"`
	}
	decode(t, w, &genRes)
	if genRes.OrdersGenerated != 2 {
		t.Fatalf("generated %d orders, want 2", genRes.OrdersGenerated)
	}

	orderID := genRes.Orders[0].ID
	w = doJSON(t, router, http.MethodGet, "/api/car-orders/"+orderID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get enriched = %d: %s", w.Code, w.Body.String())
	}
	var enriched struct {
		Industry *models.Industry `json:"industry"`
	}
	decode(t, w, &enriched)
	if enriched.Industry == nil || enriched.Industry.Name != "Pine Mill" {
		t.Errorf("enrichment = %+v", enriched.Industry)
	}

	w = doJSON(t, router, http.MethodGet, "/api/car-orders?status=pending", nil)
	var orders []models.CarOrder
	decode(t, w, &orders)
	if len(orders) != 2 {
		t.Errorf("filtered list = %d, want 2", len(orders))
	}

	// pending -> in-transit is not a legal transition.
	w = doJSON(t, router, http.MethodPut, "/api/car-orders/"+orderID, map[string]string{
		"status": models.OrderInTransit,
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("illegal transition = %d, want 422: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodDelete, "/api/car-orders/"+orderID, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete pending order = %d, want 204: %s", w.Code, w.Body.String())
	}
}

func TestTrains_ErrorMapping(t *testing.T) {
	router, _ := testRouter(t)

	// Unknown route resolves to 404.
	w := doJSON(t, router, http.MethodPost, "/api/trains", map[string]interface{}{
		"name": "Mill Local", "routeId": "r-none", "sessionNumber": 1,
		"locomotiveIds": []string{"l-none"}, "maxCapacity": 5,
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route = %d, want 404: %s", w.Code, w.Body.String())
	}

	// Schema failure resolves to 400.
	w = doJSON(t, router, http.MethodPost, "/api/trains", map[string]interface{}{
		"name": "", "routeId": "", "maxCapacity": 0,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid train = %d, want 400: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/api/trains/t-none/complete", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("complete unknown train = %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/trains", nil)
	if w.Code != http.StatusOK {
		t.Errorf("list trains = %d, want 200", w.Code)
	}
}

func TestStart_NilStore(t *testing.T) {
	err := Start(context.Background(), StartOpts{})
	if err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestBadJSONBody(t *testing.T) {
	router, _ := testRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/stations", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body = %d, want 400", w.Code)
	}
}
