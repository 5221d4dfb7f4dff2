package handlers

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/xelth-com/eckwms3d/internal/buildinfo"
	"github.com/xelth-com/eckwms3d/internal/logger"
	"github.com/xelth-com/eckwms3d/internal/models"
	"github.com/xelth-com/eckwms3d/internal/placement"
	"github.com/xelth-com/eckwms3d/internal/scoring"
	"github.com/xelth-com/eckwms3d/internal/services/analytics"
	"github.com/xelth-com/eckwms3d/internal/session"
	"github.com/xelth-com/eckwms3d/internal/websocket"
)

// Warehouse is the service behind the API.
type Warehouse interface {
	Dataset(ctx context.Context) (*models.Dataset, error)
	UpdatePosition(ctx context.Context, sessionID string, rec placement.MoveRecord) error
	Product(ctx context.Context, code string) (*models.ProductRecord, error)
	UpdateProduct(ctx context.Context, code string, p models.ProductRecord) error
	RecalculateABC(ctx context.Context) (map[string]string, error)
	Import(ctx context.Context, bins []models.BinRecord) (int, error)
	Pickface(ctx context.Context, limit int) ([]scoring.Recommendation, error)
	WarehouseConfig(ctx context.Context) (*models.WarehouseConfig, error)
	Moves(ctx context.Context, limit int) ([]models.BinMove, error)
}

// StockSync triggers an immediate ERP stock pull.
type StockSync interface {
	Sync(ctx context.Context) (int, error)
}

// Router wraps the mux router and the warehouse service
type Router struct {
	*mux.Router
	svc      Warehouse
	hub      *websocket.Hub
	erp      StockSync
	validate *validator.Validate
	log      *logrus.Logger

	warehouseCode string
	replenishment analytics.Rules

	mu   sync.RWMutex
	opts session.Options
}

// Options configures NewRouter.
type Options struct {
	Session       session.Options
	WarehouseCode string
	PathPrefix    string
	Static        fs.FS
	// Replenishment defaults to analytics.DefaultRules.
	Replenishment analytics.Rules
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(svc Warehouse, hub *websocket.Hub, opts Options) *Router {
	if opts.Session.Zones == nil {
		opts.Session.Zones = placement.DefaultZoneSpecs()
	}
	if opts.Replenishment == (analytics.Rules{}) {
		opts.Replenishment = analytics.DefaultRules
	}
	r := &Router{
		Router:        mux.NewRouter(),
		svc:           svc,
		hub:           hub,
		validate:      validator.New(),
		log:           logger.GetLogger("http"),
		warehouseCode: opts.WarehouseCode,
		replenishment: opts.Replenishment,
		opts:          opts.Session,
	}

	root := r.Router
	if opts.PathPrefix != "" {
		root = r.PathPrefix(opts.PathPrefix).Subrouter()
	}

	// Health check endpoint
	root.HandleFunc("/health", r.healthCheck).Methods("GET")

	api := root.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", r.getStatus).Methods("GET")

	// Bin dataset and scene
	api.HandleFunc("/bins", r.getBins).Methods("GET")
	api.HandleFunc("/bins/update-position", r.updatePosition).Methods("POST")
	api.HandleFunc("/bins/{code}/product", r.getProduct).Methods("GET")
	api.HandleFunc("/bins/{code}/product", r.putProduct).Methods("PUT")
	api.HandleFunc("/layout", r.getLayout).Methods("GET")
	api.HandleFunc("/zones", r.getZones).Methods("GET")
	api.HandleFunc("/zones/regenerate", r.regenerateZones).Methods("POST")
	api.HandleFunc("/moves", r.getMoves).Methods("GET")
	api.HandleFunc("/config", r.getConfig).Methods("GET")

	// Analysis and reports
	api.HandleFunc("/abc/recalculate", r.recalculateABC).Methods("POST")
	api.HandleFunc("/pickface", r.getPickface).Methods("GET")
	api.HandleFunc("/reports/pickface.pdf", r.pickfacePDF).Methods("GET")
	api.HandleFunc("/reports/labels.pdf", r.labelsPDF).Methods("GET")
	api.HandleFunc("/analytics/picking", r.pickingAnalytics).Methods("POST")
	api.HandleFunc("/analytics/replenishment", r.replenishmentAnalytics).Methods("POST")

	// Data import
	api.HandleFunc("/import/excel", r.importExcel).Methods("POST")
	api.HandleFunc("/erp/sync", r.syncERP).Methods("POST")

	if hub != nil {
		root.Handle("/ws", websocket.Handler(hub))
	}

	if opts.Static != nil {
		root.PathPrefix("/").Handler(http.FileServer(http.FS(opts.Static)))
	}

	return r
}

// SetStockSync registers the ERP sync service for manual triggers.
func (r *Router) SetStockSync(s StockSync) {
	r.erp = s
}

func (r *Router) sessionOptions() session.Options {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.opts
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// getStatus returns build info and the number of connected viewers
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	viewers := 0
	if r.hub != nil {
		viewers = r.hub.Count()
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "running",
		"warehouse":  r.warehouseCode,
		"buildTime":  buildinfo.BuildTime,
		"commitTime": buildinfo.CommitTime,
		"commitHash": buildinfo.CommitHash,
		"startTime":  buildinfo.StartTime,
		"viewers":    viewers,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func requestContext(req *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(req.Context(), 30*time.Second)
}

// queryInt reads a non-negative integer parameter, def when absent or invalid.
func queryInt(req *http.Request, name string, def int) int {
	v, err := strconv.Atoi(req.URL.Query().Get(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}
