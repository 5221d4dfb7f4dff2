// Package warehouse serves the bin dataset and applies the edits the viewer
// makes to it: zone moves, product edits and ABC reclassification.
package warehouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/xelth-com/eckwms3d/internal/cache"
	"github.com/xelth-com/eckwms3d/internal/geom"
	"github.com/xelth-com/eckwms3d/internal/layout"
	"github.com/xelth-com/eckwms3d/internal/logger"
	"github.com/xelth-com/eckwms3d/internal/models"
	"github.com/xelth-com/eckwms3d/internal/placement"
	"github.com/xelth-com/eckwms3d/internal/scoring"
)

var (
	ErrNoData      = errors.New("no data")
	ErrBinNotFound = errors.New("bin not found")
)

// Config holds the service settings.
type Config struct {
	WarehouseCode   string
	Dimensions      layout.Dimensions
	Generator       layout.GeneratorConfig
	GenerateOnEmpty bool
	CacheTTL        time.Duration
	PersistTimeout  time.Duration
}

// Service is safe for concurrent use.
type Service struct {
	store Store
	cache cache.Cache
	cfg   Config
	log   *logrus.Logger

	pending sync.WaitGroup
}

func NewService(store Store, c cache.Cache, cfg Config) *Service {
	if c == nil {
		c = cache.NewNullCache()
	}
	if cfg.WarehouseCode == "" {
		cfg.WarehouseCode = "MAIN"
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 5 * time.Second
	}
	return &Service{store: store, cache: c, cfg: cfg, log: logger.GetLogger("warehouse")}
}

// SetLogger replaces the service logger.
func (s *Service) SetLogger(l *logrus.Logger) { s.log = l }

// Dimensions returns the layout spacing in use.
func (s *Service) Dimensions() layout.Dimensions { return s.cfg.Dimensions }

func cacheKey(e models.Entity) string {
	return "dataset:" + e.GetEntityType() + ":" + e.GetEntityID()
}

// Dataset returns every bin of the warehouse, normalized. An empty warehouse
// yields a generated layout when enabled, ErrNoData otherwise.
func (s *Service) Dataset(ctx context.Context) (*models.Dataset, error) {
	wh, err := s.store.Warehouse(ctx, s.cfg.WarehouseCode)
	if err != nil {
		return nil, err
	}
	key := cacheKey(wh)

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.WithError(err).Warn("⚠️ Dataset cache read failed")
	} else if ok {
		var ds models.Dataset
		if err := json.Unmarshal(data, &ds); err == nil {
			return &ds, nil
		}
	}

	stored, err := s.store.Bins(ctx, wh.ID)
	if err != nil {
		return nil, err
	}
	ds := &models.Dataset{Bins: make([]models.BinRecord, 0, len(stored))}
	for _, b := range stored {
		ds.Bins = append(ds.Bins, b.ToBinRecord())
	}
	if wh.Config != nil {
		ds.Config = wh.Config.ToLayoutConfig()
	}

	if len(ds.Bins) == 0 && s.cfg.GenerateOnEmpty {
		gen := s.generatorFor(wh)
		bins, err := layout.Generate(gen, s.cfg.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("generate fallback layout: %w", err)
		}
		s.log.WithField("bins", len(bins)).Info("🏗️ No stored bins, serving generated layout")
		ds.Bins = bins
		ds.Config = &models.LayoutConfig{Rows: gen.Rows, RacksPerRow: gen.RacksPerRow, MaxLevels: gen.Levels, RackType: "generated"}
	}
	if len(ds.Bins) == 0 {
		return nil, ErrNoData
	}

	if data, err := json.Marshal(ds); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
			s.log.WithError(err).Warn("⚠️ Dataset cache write failed")
		}
	}
	return ds, nil
}

func (s *Service) generatorFor(wh *models.Warehouse) layout.GeneratorConfig {
	gen := s.cfg.Generator
	if wh.Config != nil && wh.Config.Rows > 0 && wh.Config.RacksPerRow > 0 && wh.Config.MaxLevels > 0 {
		gen = layout.FromWarehouseConfig(*wh.Config)
	}
	return gen
}

// Invalidate drops the cached dataset.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, cacheKey(models.Warehouse{Code: s.cfg.WarehouseCode})); err != nil {
		s.log.WithError(err).Warn("⚠️ Dataset cache invalidation failed")
	}
}

// UpdatePosition records a completed zone drop.
func (s *Service) UpdatePosition(ctx context.Context, sessionID string, rec placement.MoveRecord) error {
	wh, err := s.store.Warehouse(ctx, s.cfg.WarehouseCode)
	if err != nil {
		return err
	}
	bin, err := s.store.Bin(ctx, wh.ID, rec.Label)
	if err != nil {
		return err
	}

	from := bin.Zone
	zone := rec.NewZone
	bin.Zone = &zone
	bin.X, bin.Y, bin.Z = rec.Position.X, rec.BaseY, rec.Position.Z

	pos, _ := json.Marshal(geom.V(bin.X, bin.Y, bin.Z))
	move := &models.BinMove{
		BinCode:   bin.BinCode,
		FromZone:  from,
		ToZone:    rec.NewZone,
		Position:  datatypes.JSON(pos),
		SessionID: sessionID,
	}
	if err := s.store.MoveBin(ctx, bin, move); err != nil {
		return fmt.Errorf("move bin %s: %w", bin.BinCode, err)
	}
	s.Invalidate(ctx)
	s.log.WithFields(logrus.Fields{"bin": bin.BinCode, "zone": rec.NewZone, "session": sessionID}).Info("📦 Bin moved")
	return nil
}

// PersistAsync stores a move in the background. Failures are logged only;
// the caller's view of the move stands either way.
func (s *Service) PersistAsync(sessionID string, rec placement.MoveRecord) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
		defer cancel()
		if err := s.UpdatePosition(ctx, sessionID, rec); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{"bin": rec.Label, "zone": rec.NewZone}).Error("❌ Failed to persist bin move")
		}
	}()
}

// Wait blocks until background writes have finished.
func (s *Service) Wait() { s.pending.Wait() }

// Product returns the product of a bin, nil when the bin is empty.
func (s *Service) Product(ctx context.Context, code string) (*models.ProductRecord, error) {
	wh, err := s.store.Warehouse(ctx, s.cfg.WarehouseCode)
	if err != nil {
		return nil, err
	}
	bin, err := s.store.Bin(ctx, wh.ID, code)
	if err != nil {
		return nil, err
	}
	rec := bin.ToBinRecord()
	return rec.Product, nil
}

// UpdateProduct attaches p to the bin, replacing its current product.
func (s *Service) UpdateProduct(ctx context.Context, code string, p models.ProductRecord) error {
	wh, err := s.store.Warehouse(ctx, s.cfg.WarehouseCode)
	if err != nil {
		return err
	}
	bin, err := s.store.Bin(ctx, wh.ID, code)
	if err != nil {
		return err
	}
	if err := s.store.SetProduct(ctx, bin, p); err != nil {
		return fmt.Errorf("set product of %s: %w", code, err)
	}
	s.Invalidate(ctx)
	return nil
}

// RecalculateABC reclassifies every bin from its hit count.
func (s *Service) RecalculateABC(ctx context.Context) (map[string]string, error) {
	wh, err := s.store.Warehouse(ctx, s.cfg.WarehouseCode)
	if err != nil {
		return nil, err
	}
	bins, err := s.store.Bins(ctx, wh.ID)
	if err != nil {
		return nil, err
	}
	if len(bins) == 0 {
		return nil, ErrNoData
	}
	hits := make(map[string]float64, len(bins))
	for _, b := range bins {
		hits[b.BinCode] = b.ToBinRecord().Hits
	}
	classes := scoring.ClassifyABC(hits)
	if err := s.store.SetABC(ctx, wh.ID, classes); err != nil {
		return nil, fmt.Errorf("store abc classes: %w", err)
	}
	s.Invalidate(ctx)
	s.log.WithField("bins", len(classes)).Info("✅ ABC classes recalculated")
	return classes, nil
}

// Import stores bins, e.g. from a spreadsheet, and returns how many were written.
func (s *Service) Import(ctx context.Context, bins []models.BinRecord) (int, error) {
	if len(bins) == 0 {
		return 0, ErrNoData
	}
	wh, err := s.store.Warehouse(ctx, s.cfg.WarehouseCode)
	if err != nil {
		return 0, err
	}
	models.NormalizeAll(bins)
	if err := s.store.UpsertBins(ctx, wh.ID, bins); err != nil {
		return 0, err
	}
	s.Invalidate(ctx)
	return len(bins), nil
}

// SeedGenerated stores a procedurally generated warehouse.
func (s *Service) SeedGenerated(ctx context.Context) (int, error) {
	wh, err := s.store.Warehouse(ctx, s.cfg.WarehouseCode)
	if err != nil {
		return 0, err
	}
	bins, err := layout.Generate(s.generatorFor(wh), s.cfg.Dimensions)
	if err != nil {
		return 0, err
	}
	return s.Import(ctx, bins)
}

// ApplyStock overwrites bin quantities from an external source.
func (s *Service) ApplyStock(ctx context.Context, lines []StockLine) (int, error) {
	wh, err := s.store.Warehouse(ctx, s.cfg.WarehouseCode)
	if err != nil {
		return 0, err
	}
	n, err := s.store.ApplyStock(ctx, wh.ID, lines)
	if err != nil {
		return n, fmt.Errorf("apply stock: %w", err)
	}
	if n > 0 {
		s.Invalidate(ctx)
	}
	return n, nil
}

// Pickface ranks the dataset's bins for fast-picking positions.
func (s *Service) Pickface(ctx context.Context, limit int) ([]scoring.Recommendation, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	stats := layout.CalculateHeatStats(ds.Bins)
	return scoring.RankPickface(ds.Bins, stats, limit), nil
}

// WarehouseConfig returns the stored structural configuration.
func (s *Service) WarehouseConfig(ctx context.Context) (*models.WarehouseConfig, error) {
	wh, err := s.store.Warehouse(ctx, s.cfg.WarehouseCode)
	if err != nil {
		return nil, err
	}
	if wh.Config == nil {
		return &models.WarehouseConfig{WarehouseID: wh.ID}, nil
	}
	return wh.Config, nil
}

// Moves returns the latest zone moves, newest first.
func (s *Service) Moves(ctx context.Context, limit int) ([]models.BinMove, error) {
	return s.store.Moves(ctx, limit)
}
