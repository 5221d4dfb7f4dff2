package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/xelth-com/eckwms3d/internal/services/analytics"
)

// queryDate layout of the from_date and to_date filters.
const queryDate = "2006-01-02"

// pickingAnalytics charts an uploaded picking export per day and unit.
// Optional query filters: from_date, to_date and auom.
func (r *Router) pickingAnalytics(w http.ResponseWriter, req *http.Request) {
	var filter analytics.PickingFilter
	q := req.URL.Query()
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"from_date", &filter.From}, {"to_date", &filter.To}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := time.Parse(queryDate, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, p.name+" must be YYYY-MM-DD")
			return
		}
		*p.dst = d
	}
	filter.Unit = q.Get("auom")
	if filter.Unit != "" && !analytics.ValidUnit(filter.Unit) {
		respondError(w, http.StatusBadRequest, "auom must be PAL, CTN or EA")
		return
	}

	file, name, ok := uploadedFile(w, req)
	if !ok {
		return
	}
	defer file.Close()

	rep, err := analytics.Picking(file, filter)
	if err != nil {
		analyticsError(w, err)
		return
	}
	r.log.WithField("file", name).WithField("rows", rep.Rows).Info("📊 Picking export summarized")
	respondJSON(w, http.StatusOK, rep)
}

// replenishmentAnalytics classifies the moves of an uploaded replenishment export.
func (r *Router) replenishmentAnalytics(w http.ResponseWriter, req *http.Request) {
	file, name, ok := uploadedFile(w, req)
	if !ok {
		return
	}
	defer file.Close()

	rep, err := analytics.Replenishment(file, r.replenishment)
	if err != nil {
		analyticsError(w, err)
		return
	}
	r.log.WithField("file", name).WithField("critical", rep.KPI.Critical).Info("📊 Replenishment export summarized")
	respondJSON(w, http.StatusOK, rep)
}

func uploadedFile(w http.ResponseWriter, req *http.Request) (io.ReadCloser, string, bool) {
	if err := req.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
		return nil, "", false
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return nil, "", false
	}
	return file, header.Filename, true
}

func analyticsError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, analytics.ErrMissingCols) || errors.Is(err, analytics.ErrEmptySheet) {
		status = http.StatusUnprocessableEntity
	}
	respondError(w, status, err.Error())
}
