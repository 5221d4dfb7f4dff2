// Package erp pulls stock quantities from the ERP and writes them onto bins
// whose code matches the ERP location name.
package erp

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xelth-com/eckwms3d/internal/logger"
	"github.com/xelth-com/eckwms3d/internal/services/warehouse"
)

const pageSize = 500

// Source pages through the ERP's stock quants, e.g. *Client.
type Source interface {
	Login() error
	Quants(limit, offset int) ([]Quant, error)
}

// StockApplier stores stock lines, e.g. *warehouse.Service.
type StockApplier interface {
	ApplyStock(ctx context.Context, lines []warehouse.StockLine) (int, error)
}

// Config holds ERP connection settings
type Config struct {
	URL          string
	Database     string
	Username     string
	Password     string
	SyncInterval time.Duration
}

// SyncService periodically copies internal stock quants onto bins
type SyncService struct {
	source Source
	target StockApplier
	cfg    Config
	log    *logrus.Logger

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewSyncService creates a sync against the XML-RPC ERP described by cfg.
func NewSyncService(target StockApplier, cfg Config) *SyncService {
	return NewSyncServiceWithSource(NewClient(cfg.URL, cfg.Database, cfg.Username, cfg.Password), target, cfg)
}

func NewSyncServiceWithSource(source Source, target StockApplier, cfg Config) *SyncService {
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = 15 * time.Minute
	}
	return &SyncService{
		source: source,
		target: target,
		cfg:    cfg,
		log:    logger.GetLogger("erp"),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins the background synchronization loop
func (s *SyncService) Start() {
	if s.cfg.URL == "" {
		s.log.Info("ERP sync disabled: ERP_URL not configured")
		close(s.done)
		return
	}

	go func() {
		defer close(s.done)
		s.log.Info("📡 ERP sync service started")

		if err := s.source.Login(); err != nil {
			s.log.WithError(err).Error("❌ ERP authentication failed")
			return
		}
		s.runOnce()

		ticker := time.NewTicker(s.cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stop:
				s.log.Info("🛑 ERP sync service stopped")
				return
			}
		}
	}()
}

// Stop halts the loop and waits for a running sync to finish.
func (s *SyncService) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *SyncService) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := s.Sync(ctx); err != nil {
		s.log.WithError(err).Error("❌ ERP stock sync failed")
	}
}

// Sync fetches all internal quants and applies them. It returns how many
// bin stocks changed.
func (s *SyncService) Sync(ctx context.Context) (int, error) {
	s.log.Info("🔄 ERP: syncing stock quants...")
	var lines []warehouse.StockLine
	for offset := 0; ; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		page, err := s.source.Quants(pageSize, offset)
		if err != nil {
			return 0, fmt.Errorf("read quants: %w", err)
		}
		lines = append(lines, QuantsToLines(page)...)
		if len(page) < pageSize {
			break
		}
	}

	n, err := s.target.ApplyStock(ctx, lines)
	if err != nil {
		return n, err
	}
	s.log.WithFields(logrus.Fields{"quants": len(lines), "updated": n}).Info("✅ ERP: stock sync completed")
	return n, nil
}

// product display names look like "[SKU] Name"
var productName = regexp.MustCompile(`^\[([^\]]+)\]\s*(.*)$`)

// QuantsToLines turns quants into stock lines. Quants without a location or
// product are dropped.
func QuantsToLines(quants []Quant) []warehouse.StockLine {
	lines := make([]warehouse.StockLine, 0, len(quants))
	for _, q := range quants {
		if !q.Location.Set() || !q.Product.Set() {
			continue
		}
		line := warehouse.StockLine{
			BinCode:  q.BinCode(),
			SKU:      q.Product.Name,
			Name:     q.Product.Name,
			Batch:    q.Lot.Name,
			Quantity: q.Quantity,
		}
		if m := productName.FindStringSubmatch(q.Product.Name); m != nil {
			line.SKU, line.Name = m[1], m[2]
		}
		lines = append(lines, line)
	}
	return lines
}
