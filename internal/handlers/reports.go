package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/xelth-com/eckwms3d/internal/services/report"
)

func (r *Router) recalculateABC(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := requestContext(req)
	defer cancel()
	classes, err := r.svc.RecalculateABC(ctx)
	if err != nil {
		r.serviceError(w, err)
		return
	}
	counts := map[string]int{}
	for _, c := range classes {
		counts[c]++
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "updated": len(classes), "classes": counts})
}

func (r *Router) getPickface(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := requestContext(req)
	defer cancel()
	recs, err := r.svc.Pickface(ctx, queryInt(req, "limit", 20))
	if err != nil {
		r.serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

func (r *Router) pickfacePDF(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := requestContext(req)
	defer cancel()
	recs, err := r.svc.Pickface(ctx, queryInt(req, "limit", 50))
	if err != nil {
		r.serviceError(w, err)
		return
	}
	data, err := report.PickfacePDF(report.PickfaceReport{
		Warehouse:       r.warehouseCode,
		GeneratedAt:     time.Now(),
		Recommendations: recs,
	})
	if err != nil {
		r.serviceError(w, err)
		return
	}
	respondPDF(w, "pickface.pdf", data)
}

// labelsPDF prints QR labels for every bin, or for ?codes=A,B only.
func (r *Router) labelsPDF(w http.ResponseWriter, req *http.Request) {
	var codes []string
	if q := req.URL.Query().Get("codes"); q != "" {
		for _, c := range strings.Split(q, ",") {
			if c = strings.TrimSpace(c); c != "" {
				codes = append(codes, strings.ToUpper(c))
			}
		}
	} else {
		ctx, cancel := requestContext(req)
		defer cancel()
		ds, err := r.svc.Dataset(ctx)
		if err != nil {
			r.serviceError(w, err)
			return
		}
		for _, b := range ds.Bins {
			codes = append(codes, b.BinCode)
		}
	}
	data, err := report.BinLabelsPDF(codes, report.DefaultLabelConfig())
	if err != nil {
		r.serviceError(w, err)
		return
	}
	respondPDF(w, "labels.pdf", data)
}

func respondPDF(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=\""+name+"\"")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
