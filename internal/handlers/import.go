package handlers

import (
	"errors"
	"net/http"

	"github.com/xelth-com/eckwms3d/internal/services/importer"
)

const maxUploadSize = 32 << 20

// importExcel loads a Bins/BinProduct workbook. Nothing is stored unless
// every row parses.
func (r *Router) importExcel(w http.ResponseWriter, req *http.Request) {
	file, name, ok := uploadedFile(w, req)
	if !ok {
		return
	}
	defer file.Close()

	res, err := importer.Read(file, r.warehouseCode)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if !errors.Is(err, importer.ErrNoBinsSheet) && !errors.Is(err, importer.ErrMissingCols) {
			status = http.StatusBadRequest
		}
		respondError(w, status, err.Error())
		return
	}
	if !res.OK() {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"success": false,
			"errors":  res.Errors,
		})
		return
	}

	ctx, cancel := requestContext(req)
	defer cancel()
	n, err := r.svc.Import(ctx, res.Bins)
	if err != nil {
		r.serviceError(w, err)
		return
	}
	r.log.WithField("file", name).WithField("bins", n).Info("✅ Workbook imported")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":           true,
		"bins":              n,
		"products_assigned": res.Products,
	})
}

// syncERP pulls stock from the ERP right away.
func (r *Router) syncERP(w http.ResponseWriter, req *http.Request) {
	if r.erp == nil {
		respondError(w, http.StatusServiceUnavailable, "ERP sync is not configured")
		return
	}
	ctx, cancel := requestContext(req)
	defer cancel()
	n, err := r.erp.Sync(ctx)
	if err != nil {
		r.serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "updated": n})
}
