package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"seating-chart-go/db"
	"seating-chart-go/models"
	"seating-chart-go/seating"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// APIHandler owns the classroom chart and serves it over HTTP.
// The mutex keeps one operation at a time on the chart.
type APIHandler struct {
	mu         sync.Mutex
	Chart      *seating.Chart
	Randomizer *seating.Randomizer
	Store      db.Store
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(chart *seating.Chart, randomizer *seating.Randomizer, store db.Store) *APIHandler {
	return &APIHandler{
		Chart:      chart,
		Randomizer: randomizer,
		Store:      store,
	}
}

// RegisterRoutes mounts the API under /api.
func (h *APIHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// Table routes
		api.GET("/tables", h.GetTables)
		api.POST("/tables", h.AddTable)
		api.PATCH("/tables/:tableId", h.RenameTable)
		api.DELETE("/tables/:tableId", h.DeleteTable)

		// Seat routes within a table
		api.POST("/tables/:tableId/seats", h.AddSeat)
		api.DELETE("/tables/:tableId/seats", h.RemoveSeat)
		api.PUT("/tables/:tableId/seats/:index", h.SetSeatOccupant)
		api.POST("/tables/:tableId/seats/:index/lock", h.ToggleLock)

		// Seating
		api.POST("/randomize", h.Randomize)
		api.POST("/import/roster", h.ImportRoster)
		api.GET("/export", h.ExportChart)

		// Persistence
		api.POST("/save", h.SaveSetup)
		api.POST("/load", h.LoadSetup)

		api.GET("/ping", PingHandler)
	}
}

// Restore loads the saved chart if there is one. A missing save is not an error.
func (h *APIHandler) Restore(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	tables, err := h.Store.Load(ctx)
	if err != nil {
		if errors.Is(err, db.ErrSaveNotFound) {
			log.Info().Msg("No saved setup found, starting with an empty chart")
			return nil
		}
		return err
	}
	h.Chart.Replace(tables)
	return nil
}

type tableView struct {
	models.Table
	Label     string `json:"label"`
	SeatCount int    `json:"seatCount"`
}

func (h *APIHandler) renderChart(c *gin.Context, status int, extra gin.H) {
	tables := h.Chart.Tables()
	views := make([]tableView, len(tables))
	for i, t := range tables {
		views[i] = tableView{Table: t, Label: t.Label(), SeatCount: t.SeatCount()}
	}
	body := gin.H{"tables": views}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// respondError maps seating and storage errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case seating.IsValidation(err), errors.Is(err, seating.ErrSeatIndex):
		status = http.StatusBadRequest
	case errors.Is(err, seating.ErrEmptyCandidates):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "warning": true})
		return
	case errors.Is(err, seating.ErrTableNotFound), errors.Is(err, db.ErrSaveNotFound):
		status = http.StatusNotFound
	case errors.Is(err, seating.ErrNoSeats), errors.Is(err, seating.ErrSeatLocked):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msgf("Error handling %s %s", c.Request.Method, c.FullPath())
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func seatIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Seat index must be a number"})
		return 0, false
	}
	return index, true
}

// --- Table Handlers ---

// GetTables handles GET /api/tables
func (h *APIHandler) GetTables(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renderChart(c, http.StatusOK, nil)
}

type addTableRequest struct {
	Name  string          `json:"name"`
	Seats json.RawMessage `json:"seats"` // number or numeric string
}

// AddTable handles POST /api/tables
func (h *APIHandler) AddTable(c *gin.Context) {
	var req addTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	rawSeats := strings.Trim(string(req.Seats), `"`)
	table, err := h.Chart.AddTableRaw(req.Name, rawSeats)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderChart(c, http.StatusCreated, gin.H{"tableId": table.ID})
}

type renameTableRequest struct {
	Name string `json:"name"`
}

// RenameTable handles PATCH /api/tables/:tableId
func (h *APIHandler) RenameTable(c *gin.Context) {
	var req renameTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.Chart.RenameTable(c.Param("tableId"), req.Name); err != nil {
		respondError(c, err)
		return
	}
	h.renderChart(c, http.StatusOK, nil)
}

// DeleteTable handles DELETE /api/tables/:tableId
func (h *APIHandler) DeleteTable(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Chart.DeleteTable(c.Param("tableId"))
	h.renderChart(c, http.StatusOK, nil)
}

// --- Seat Handlers ---

// AddSeat handles POST /api/tables/:tableId/seats
func (h *APIHandler) AddSeat(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.Chart.AddSeat(c.Param("tableId")); err != nil {
		respondError(c, err)
		return
	}
	h.renderChart(c, http.StatusOK, nil)
}

// RemoveSeat handles DELETE /api/tables/:tableId/seats
func (h *APIHandler) RemoveSeat(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.Chart.RemoveSeat(c.Param("tableId")); err != nil {
		respondError(c, err)
		return
	}
	h.renderChart(c, http.StatusOK, nil)
}

type occupantRequest struct {
	Occupant string `json:"occupant"`
}

// SetSeatOccupant handles PUT /api/tables/:tableId/seats/:index
func (h *APIHandler) SetSeatOccupant(c *gin.Context) {
	index, ok := seatIndex(c)
	if !ok {
		return
	}
	var req occupantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.Chart.SetSeatOccupant(c.Param("tableId"), index, req.Occupant); err != nil {
		respondError(c, err)
		return
	}
	h.renderChart(c, http.StatusOK, nil)
}

type lockRequest struct {
	Staged *string `json:"staged"`
}

// ToggleLock handles POST /api/tables/:tableId/seats/:index/lock
// The body is optional; without "staged" the current occupant is locked in.
func (h *APIHandler) ToggleLock(c *gin.Context) {
	index, ok := seatIndex(c)
	if !ok {
		return
	}
	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	locked, err := h.Chart.ToggleLock(c.Param("tableId"), index, req.Staged)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderChart(c, http.StatusOK, gin.H{"locked": locked})
}

// --- Seating Handlers ---

type randomizeRequest struct {
	Names string `json:"names"` // comma separated
}

// Randomize handles POST /api/randomize
func (h *APIHandler) Randomize(c *gin.Context) {
	var req randomizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.Randomizer.RandomizeRaw(h.Chart, req.Names)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderChart(c, http.StatusOK, gin.H{"result": res})
}

// ImportRoster handles POST /api/import/roster
// It reads student names from an uploaded Excel roster and randomizes with them.
func (h *APIHandler) ImportRoster(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error retrieving uploaded file: " + err.Error()})
		return
	}
	defer file.Close()

	log.Info().Msgf("Received roster upload: %s", header.Filename)
	roster, err := db.ReadRosterFromExcel(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read roster: " + err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.Randomizer.Randomize(h.Chart, db.RosterNames(roster))
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderChart(c, http.StatusOK, gin.H{"result": res, "importedCount": len(roster)})
}

// ExportChart handles GET /api/export
func (h *APIHandler) ExportChart(c *gin.Context) {
	h.mu.Lock()
	tables := h.Chart.Tables()
	h.mu.Unlock()

	var buf bytes.Buffer
	if err := db.WriteChartToExcel(&buf, tables); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="seating_chart.xlsx"`)
	c.Data(http.StatusOK, excelContentType, buf.Bytes())
}

// --- Persistence Handlers ---

// SaveSetup handles POST /api/save
func (h *APIHandler) SaveSetup(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.Store.Save(c.Request.Context(), h.Chart.Tables()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Seating chart saved successfully."})
}

// LoadSetup handles POST /api/load
// On failure the chart in memory is left as it was.
func (h *APIHandler) LoadSetup(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	tables, err := h.Store.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.Chart.Replace(tables)
	h.renderChart(c, http.StatusOK, gin.H{"message": "Seating chart loaded successfully."})
}

// --- Ping Handler ---
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}
