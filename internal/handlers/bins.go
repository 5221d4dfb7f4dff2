package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xelth-com/eckwms3d/internal/models"
	"github.com/xelth-com/eckwms3d/internal/overlay"
	"github.com/xelth-com/eckwms3d/internal/placement"
	"github.com/xelth-com/eckwms3d/internal/services/warehouse"
	"github.com/xelth-com/eckwms3d/internal/session"
)

// serviceError maps service errors to responses.
func (r *Router) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, warehouse.ErrNoData), errors.Is(err, session.ErrNoData):
		respondError(w, http.StatusNotFound, "no data")
	case errors.Is(err, warehouse.ErrBinNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		r.log.WithError(err).Error("❌ Request failed")
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// getBins returns the raw bin dataset
func (r *Router) getBins(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := requestContext(req)
	defer cancel()
	ds, err := r.svc.Dataset(ctx)
	if err != nil {
		r.serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ds)
}

// getLayout returns the positioned scene, colored by ?mode=
func (r *Router) getLayout(w http.ResponseWriter, req *http.Request) {
	mode, err := overlay.ParseMode(req.URL.Query().Get("mode"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := requestContext(req)
	defer cancel()
	ds, err := r.svc.Dataset(ctx)
	if err != nil {
		r.serviceError(w, err)
		return
	}
	sess, err := session.New(r.sessionOptions(), nil)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := sess.Load(ds); err != nil {
		r.serviceError(w, err)
		return
	}
	sess.SetOverlay(mode)
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (r *Router) getZones(w http.ResponseWriter, req *http.Request) {
	zones, err := placement.GenerateZones(r.sessionOptions().Zones)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, zones)
}

type regenerateRequest struct {
	Zones []placement.ZoneSpec `json:"zones"`
}

// regenerateZones replaces the zone grid for new layouts and viewers. An
// empty body restores the defaults.
func (r *Router) regenerateZones(w http.ResponseWriter, req *http.Request) {
	var body regenerateRequest
	if req.ContentLength != 0 {
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
	}
	specs := body.Zones
	if len(specs) == 0 {
		specs = placement.DefaultZoneSpecs()
	}
	zones, err := placement.GenerateZones(specs)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	r.mu.Lock()
	r.opts.Zones = specs
	r.mu.Unlock()
	if r.hub != nil {
		r.hub.SetZones(specs)
	}
	r.log.WithField("zones", len(zones)).Info("🔄 Zone grid regenerated")
	respondJSON(w, http.StatusOK, zones)
}

// updatePosition stores a zone drop made by a client that does not use the
// websocket and replays it in the open viewers.
func (r *Router) updatePosition(w http.ResponseWriter, req *http.Request) {
	var rec placement.MoveRecord
	if err := json.NewDecoder(req.Body).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := r.validate.Struct(rec); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := requestContext(req)
	defer cancel()
	sessionID := req.Header.Get("X-Session-ID")
	if err := r.svc.UpdatePosition(ctx, sessionID, rec); err != nil {
		r.serviceError(w, err)
		return
	}
	if r.hub != nil {
		r.hub.BroadcastMove(sessionID, rec)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "bin": rec.Label, "zone": rec.NewZone})
}

func (r *Router) getProduct(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := requestContext(req)
	defer cancel()
	p, err := r.svc.Product(ctx, mux.Vars(req)["code"])
	if err != nil {
		r.serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"product": p})
}

// productRequest accepts the quantity as a number or a string.
type productRequest struct {
	SKU      string      `json:"sku" validate:"required"`
	Name     string      `json:"name"`
	Batch    string      `json:"batch"`
	Expiry   string      `json:"expiry"`
	Image    string      `json:"image"`
	Quantity interface{} `json:"quantity"`
}

func (r *Router) putProduct(w http.ResponseWriter, req *http.Request) {
	var body productRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := r.validate.Struct(body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := models.ProductRecord{
		SKU:      body.SKU,
		Name:     body.Name,
		Batch:    body.Batch,
		Expiry:   body.Expiry,
		Image:    body.Image,
		Quantity: models.CoerceQuantity(body.Quantity),
	}
	ctx, cancel := requestContext(req)
	defer cancel()
	code := mux.Vars(req)["code"]
	if err := r.svc.UpdateProduct(ctx, code, p); err != nil {
		r.serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "bin": code, "product": p})
}

func (r *Router) getMoves(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := requestContext(req)
	defer cancel()
	moves, err := r.svc.Moves(ctx, queryInt(req, "limit", 100))
	if err != nil {
		r.serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, moves)
}

func (r *Router) getConfig(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := requestContext(req)
	defer cancel()
	cfg, err := r.svc.WarehouseConfig(ctx)
	if err != nil {
		r.serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}
