package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"materia/internal/projects"
)

func newProjectHandler(t *testing.T) *ProjectHandler {
	t.Helper()
	store, err := projects.NewBoltStore(filepath.Join(t.TempDir(), "projects.db"))
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return NewProjectHandler(store)
}

func createProject(t *testing.T, handler *ProjectHandler, req CreateProjectRequest) {
	t.Helper()
	body, _ := json.Marshal(req)
	r := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, r)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}
}

func TestProjectHandler_Create_ExpandsRooms(t *testing.T) {
	handler := newProjectHandler(t)

	body, _ := json.Marshal(CreateProjectRequest{
		Name: "Beach House",
		Rooms: []projects.RoomSelection{
			{Name: "Bedroom", Count: 2},
			{Name: "Kitchen", Count: 1},
		},
		CustomRooms: []string{"Sala"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}
	var resp ProjectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := []string{"Bedroom", "Bedroom 2", "Kitchen", "Sala"}
	if !reflect.DeepEqual(resp.Rooms, want) {
		t.Errorf("rooms = %v, want %v", resp.Rooms, want)
	}
}

func TestProjectHandler_Create_Conflict(t *testing.T) {
	handler := newProjectHandler(t)
	createProject(t, handler, CreateProjectRequest{Name: "Kitchen Villa"})

	body, _ := json.Marshal(CreateProjectRequest{Name: "kitchen villa"})
	req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 for case-insensitive duplicate", rec.Code)
	}
}

func TestProjectHandler_Create_MissingName(t *testing.T) {
	handler := newProjectHandler(t)

	body, _ := json.Marshal(CreateProjectRequest{})
	req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestProjectHandler_List(t *testing.T) {
	handler := newProjectHandler(t)
	createProject(t, handler, CreateProjectRequest{Name: "Beach House"})
	createProject(t, handler, CreateProjectRequest{Name: "Atelier"})

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp ProjectListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Projects) != 2 {
		t.Errorf("got %d projects, want 2", len(resp.Projects))
	}
}

func TestProjectHandler_CartRoundTrip(t *testing.T) {
	handler := newProjectHandler(t)
	createProject(t, handler, CreateProjectRequest{
		Name:  "Beach House",
		Rooms: []projects.RoomSelection{{Name: "Living Room", Count: 1}},
	})

	lines := []projects.CartLine{
		{Name: "Teak Bench", Price: 100, Room: "Living Room", Quantity: 2, Supplier: "+66812345678"},
		{Name: "Floor Lamp", Price: 50, Room: "Living Room", Quantity: 1, Supplier: "Lights Co"},
		{Name: "Dining Table", Price: 200, Room: "Dining Room", Quantity: 1},
	}
	body, _ := json.Marshal(ReplaceCartRequest{Lines: lines})
	put := httptest.NewRequest(http.MethodPut, "/api/projects/Beach%20House/cart", bytes.NewReader(body))
	put = withURLParam(put, "name", "Beach House")
	putRec := httptest.NewRecorder()
	handler.ReplaceCart(putRec, put)
	if putRec.Code != http.StatusNoContent {
		t.Fatalf("ReplaceCart status = %d, want 204; body: %s", putRec.Code, putRec.Body.String())
	}

	get := httptest.NewRequest(http.MethodGet, "/api/projects/Beach%20House/cart", nil)
	get = withURLParam(get, "name", "Beach House")
	getRec := httptest.NewRecorder()
	handler.GetCart(getRec, get)
	if getRec.Code != http.StatusOK {
		t.Fatalf("GetCart status = %d, want 200", getRec.Code)
	}

	var resp CartResponse
	if err := json.Unmarshal(getRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(resp.Lines))
	}
	if math.Abs(resp.GrandTotal-450) > 1e-9 {
		t.Errorf("grand total = %v, want 450", resp.GrandTotal)
	}
	if resp.Lines[0].Total != 200 {
		t.Errorf("line 0 total = %v, want 200", resp.Lines[0].Total)
	}
	// Phone-number suppliers get a WhatsApp deep link, others do not.
	if !strings.HasPrefix(resp.Lines[0].WhatsApp, "https://wa.me/66812345678?") {
		t.Errorf("line 0 whatsapp = %q, want a wa.me link", resp.Lines[0].WhatsApp)
	}
	if resp.Lines[1].WhatsApp != "" {
		t.Errorf("line 1 whatsapp = %q, want empty for non-phone supplier", resp.Lines[1].WhatsApp)
	}
}

func TestProjectHandler_ReplaceCart_InvalidLine(t *testing.T) {
	handler := newProjectHandler(t)
	createProject(t, handler, CreateProjectRequest{Name: "Beach House"})

	body, _ := json.Marshal(ReplaceCartRequest{
		Lines: []projects.CartLine{{Name: "Bench", Quantity: 0}},
	})
	req := httptest.NewRequest(http.MethodPut, "/api/projects/Beach%20House/cart", bytes.NewReader(body))
	req = withURLParam(req, "name", "Beach House")
	rec := httptest.NewRecorder()
	handler.ReplaceCart(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for zero quantity", rec.Code)
	}
}

func TestProjectHandler_GetCart_NotFound(t *testing.T) {
	handler := newProjectHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/Nowhere/cart", nil)
	req = withURLParam(req, "name", "Nowhere")
	rec := httptest.NewRecorder()
	handler.GetCart(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestProjectHandler_Totals(t *testing.T) {
	handler := newProjectHandler(t)
	createProject(t, handler, CreateProjectRequest{Name: "Beach House"})

	lines := []projects.CartLine{
		{Name: "Bench", Price: 100, Room: "A", Quantity: 2},
		{Name: "Lamp", Price: 50, Room: "A", Quantity: 1},
		{Name: "Table", Price: 200, Room: "B", Quantity: 1},
	}
	body, _ := json.Marshal(ReplaceCartRequest{Lines: lines})
	put := httptest.NewRequest(http.MethodPut, "/api/projects/Beach%20House/cart", bytes.NewReader(body))
	put = withURLParam(put, "name", "Beach House")
	handler.ReplaceCart(httptest.NewRecorder(), put)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/Beach%20House/totals", nil)
	req = withURLParam(req, "name", "Beach House")
	rec := httptest.NewRecorder()
	handler.Totals(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp TotalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := []projects.RoomTotal{{Room: "A", Total: 250}, {Room: "B", Total: 200}}
	if !reflect.DeepEqual(resp.Rooms, want) {
		t.Errorf("room totals = %v, want %v", resp.Rooms, want)
	}
	if math.Abs(resp.GrandTotal-450) > 1e-9 {
		t.Errorf("grand total = %v, want 450", resp.GrandTotal)
	}
}
