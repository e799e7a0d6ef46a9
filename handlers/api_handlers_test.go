package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"seating-chart-go/db"
	"seating-chart-go/seating"
)

type chartBody struct {
	Tables []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Label     string `json:"label"`
		SeatCount int    `json:"seatCount"`
		Seats     []struct {
			Occupant *string `json:"occupant"`
			Locked   bool    `json:"locked"`
		} `json:"seats"`
	} `json:"tables"`
	TableID string         `json:"tableId"`
	Locked  bool           `json:"locked"`
	Result  seating.Result `json:"result"`
	Message string         `json:"message"`
	Error   string         `json:"error"`
	Warning bool           `json:"warning"`
}

type testServer struct {
	t       *testing.T
	router  *gin.Engine
	handler *APIHandler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := db.NewFileStore(filepath.Join(t.TempDir(), db.DefaultSavePath))
	handler := NewAPIHandler(seating.NewChart(nil), seating.NewSeededRandomizer(11), store)
	router := gin.New()
	handler.RegisterRoutes(router)
	return &testServer{t: t, router: router, handler: handler}
}

func (s *testServer) do(method, path string, body interface{}) (int, chartBody) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) (int, chartBody) {
	s.t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var out chartBody
	if w.Header().Get("Content-Type") != excelContentType {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (s *testServer) addTable(name string, seats interface{}) string {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/tables", gin.H{"name": name, "seats": seats})
	require.Equal(s.t, http.StatusCreated, code, body.Error)
	return body.TableID
}

func Test_AddTable_Accepts_Number_Or_Text(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)

	s.addTable("Table A", 3)
	s.addTable("Table B", "2")

	code, body := s.do(http.MethodGet, "/api/tables", nil)
	req.Equal(http.StatusOK, code)
	req.Len(body.Tables, 2)
	req.Equal("Table A (Seats: 3)", body.Tables[0].Label)
	req.Equal(2, body.Tables[1].SeatCount)
	req.Len(body.Tables[1].Seats, 2)
}

func Test_AddTable_Validation_Errors(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)

	code, body := s.do(http.MethodPost, "/api/tables", gin.H{"name": "", "seats": 2})
	req.Equal(http.StatusBadRequest, code)
	req.Contains(body.Error, "table name")

	code, body = s.do(http.MethodPost, "/api/tables", gin.H{"name": "A", "seats": "many"})
	req.Equal(http.StatusBadRequest, code)
	req.Contains(body.Error, "seat count")
}

func Test_Seat_Routes(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	id := s.addTable("A", 0)

	code, body := s.do(http.MethodDelete, "/api/tables/"+id+"/seats", nil)
	req.Equal(http.StatusConflict, code)
	req.Contains(body.Error, "no seats")

	code, body = s.do(http.MethodPost, "/api/tables/"+id+"/seats", nil)
	req.Equal(http.StatusOK, code)
	req.Equal(1, body.Tables[0].SeatCount)

	code, body = s.do(http.MethodPut, "/api/tables/"+id+"/seats/0", gin.H{"occupant": "Alice"})
	req.Equal(http.StatusOK, code)
	req.Equal("Alice", *body.Tables[0].Seats[0].Occupant)

	code, _ = s.do(http.MethodPut, "/api/tables/"+id+"/seats/5", gin.H{"occupant": "Bob"})
	req.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPut, "/api/tables/"+id+"/seats/x", gin.H{"occupant": "Bob"})
	req.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/tables/missing/seats", nil)
	req.Equal(http.StatusNotFound, code)
}

func Test_Lock_Then_Edit_Is_Rejected(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	id := s.addTable("A", 1)

	code, body := s.do(http.MethodPost, "/api/tables/"+id+"/seats/0/lock", gin.H{"staged": "Alice"})
	req.Equal(http.StatusOK, code)
	req.True(body.Locked)
	req.True(body.Tables[0].Seats[0].Locked)

	code, _ = s.do(http.MethodPut, "/api/tables/"+id+"/seats/0", gin.H{"occupant": "Bob"})
	req.Equal(http.StatusConflict, code)

	// no body: unlock keeps the occupant
	code, body = s.do(http.MethodPost, "/api/tables/"+id+"/seats/0/lock", nil)
	req.Equal(http.StatusOK, code)
	req.False(body.Locked)
	req.Equal("Alice", *body.Tables[0].Seats[0].Occupant)
}

func Test_Rename_And_Delete_Table(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	id := s.addTable("A", 1)

	code, body := s.do(http.MethodPatch, "/api/tables/"+id, gin.H{"name": ""})
	req.Equal(http.StatusOK, code)
	req.Equal("A", body.Tables[0].Name)

	code, body = s.do(http.MethodPatch, "/api/tables/"+id, gin.H{"name": "Window"})
	req.Equal(http.StatusOK, code)
	req.Equal("Window", body.Tables[0].Name)

	code, body = s.do(http.MethodDelete, "/api/tables/"+id, nil)
	req.Equal(http.StatusOK, code)
	req.Empty(body.Tables)

	code, _ = s.do(http.MethodDelete, "/api/tables/"+id, nil)
	req.Equal(http.StatusOK, code)
}

func Test_Randomize_Route(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	s.addTable("Table A", 3)
	b := s.addTable("Table B", 2)
	code, _ := s.do(http.MethodPost, "/api/tables/"+b+"/seats/0/lock", gin.H{"staged": "Alice"})
	req.Equal(http.StatusOK, code)

	code, body := s.do(http.MethodPost, "/api/randomize", gin.H{"names": "Bob, Carol, Dave, Eve"})
	req.Equal(http.StatusOK, code)
	req.Equal(seating.Result{Placed: 4}, body.Result)
	req.Equal("Alice", *body.Tables[1].Seats[0].Occupant)

	var placed []string
	for _, tb := range body.Tables {
		for _, seat := range tb.Seats {
			if !seat.Locked && seat.Occupant != nil {
				placed = append(placed, *seat.Occupant)
			}
		}
	}
	req.ElementsMatch([]string{"Bob", "Carol", "Dave", "Eve"}, placed)

	code, body = s.do(http.MethodPost, "/api/randomize", gin.H{"names": " , "})
	req.Equal(http.StatusBadRequest, code)
	req.True(body.Warning)
}

func Test_Save_And_Load_Round_Trip(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)

	code, body := s.do(http.MethodPost, "/api/load", nil)
	req.Equal(http.StatusNotFound, code)
	req.Contains(body.Error, "no saved setup found")

	id := s.addTable("A", 2)
	s.do(http.MethodPut, "/api/tables/"+id+"/seats/1", gin.H{"occupant": "Bob"})
	s.do(http.MethodPost, "/api/tables/"+id+"/seats/1/lock", nil)
	_, saved := s.do(http.MethodGet, "/api/tables", nil)

	code, body = s.do(http.MethodPost, "/api/save", nil)
	req.Equal(http.StatusOK, code)
	req.Equal("Seating chart saved successfully.", body.Message)

	s.do(http.MethodDelete, "/api/tables/"+id, nil)
	s.addTable("B", 4)

	code, body = s.do(http.MethodPost, "/api/load", nil)
	req.Equal(http.StatusOK, code)
	req.Equal(saved.Tables, body.Tables)
}

func Test_Failed_Load_Leaves_Chart_Unchanged(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	s.addTable("A", 2)
	_, before := s.do(http.MethodGet, "/api/tables", nil)

	code, _ := s.do(http.MethodPost, "/api/load", nil)
	req.Equal(http.StatusNotFound, code)

	_, after := s.do(http.MethodGet, "/api/tables", nil)
	req.Equal(before.Tables, after.Tables)
}

func Test_Restore_Without_Save_Is_Not_An_Error(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.handler.Restore(context.Background()))
	require.Empty(t, s.handler.Chart.Tables())
}

func Test_ImportRoster_Randomizes_From_Excel(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	s.addTable("A", 2)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	req.NoError(f.SetSheetRow(sheet, "A1", &[]interface{}{"No", "Name"}))
	req.NoError(f.SetSheetRow(sheet, "A2", &[]interface{}{"S1", "Bob"}))
	req.NoError(f.SetSheetRow(sheet, "A3", &[]interface{}{"S2", "Carol"}))
	req.NoError(f.SetSheetRow(sheet, "A4", &[]interface{}{"S3", "Dave"}))
	var xlsx bytes.Buffer
	_, err := f.WriteTo(&xlsx)
	req.NoError(err)
	req.NoError(f.Close())

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("file", "roster.xlsx")
	req.NoError(err)
	_, err = part.Write(xlsx.Bytes())
	req.NoError(err)
	req.NoError(mw.Close())

	httpReq := httptest.NewRequest(http.MethodPost, "/api/import/roster", &form)
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	code, body := s.serve(httpReq)
	req.Equal(http.StatusOK, code, body.Error)
	req.Equal(seating.Result{Placed: 2, Dropped: 1}, body.Result)
}

func Test_ExportChart(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	id := s.addTable("A", 1)
	s.do(http.MethodPut, "/api/tables/"+id+"/seats/0", gin.H{"occupant": "Alice"})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/export", nil))
	req.Equal(http.StatusOK, w.Code)
	req.Equal(excelContentType, w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(w.Body)
	req.NoError(err)
	defer f.Close()
	value, err := f.GetCellValue("Seating", "C2")
	req.NoError(err)
	req.Equal("Alice", value)
}

func Test_Ping(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(http.MethodGet, "/api/ping", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Pong!", body.Message)
}

func Test_AddTable_Huge_Seat_Count_Is_Bad_Request(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)

	code, body := s.do(http.MethodPost, "/api/tables", gin.H{"name": "A", "seats": 1000000000000})
	req.Equal(http.StatusBadRequest, code)
	req.Contains(body.Error, "seat count")

	code, body = s.do(http.MethodGet, "/api/tables", nil)
	req.Equal(http.StatusOK, code)
	req.Empty(body.Tables)
}

func Test_AddSeat_Above_Limit_Is_Bad_Request(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	id := s.addTable("A", seating.MaxSeats)

	code, body := s.do(http.MethodPost, "/api/tables/"+id+"/seats", nil)
	req.Equal(http.StatusBadRequest, code)
	req.Contains(body.Error, "seat count")
}

func Test_ToggleLock_Accepts_Empty_Chunked_Body(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	id := s.addTable("A", 1)
	s.do(http.MethodPut, "/api/tables/"+id+"/seats/0", gin.H{"occupant": "Alice"})

	httpReq := httptest.NewRequest(http.MethodPost, "/api/tables/"+id+"/seats/0/lock", bytes.NewReader(nil))
	httpReq.ContentLength = -1
	httpReq.Header.Set("Content-Type", "application/json")
	code, body := s.serve(httpReq)
	req.Equal(http.StatusOK, code, body.Error)
	req.True(body.Locked)
	req.Equal("Alice", *body.Tables[0].Seats[0].Occupant)
}

func Test_ToggleLock_Rejects_Malformed_Body(t *testing.T) {
	s := newTestServer(t)
	id := s.addTable("A", 1)

	httpReq := httptest.NewRequest(http.MethodPost, "/api/tables/"+id+"/seats/0/lock", bytes.NewBufferString("{"))
	httpReq.Header.Set("Content-Type", "application/json")
	code, _ := s.serve(httpReq)
	require.Equal(t, http.StatusBadRequest, code)
}
