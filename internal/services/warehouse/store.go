package warehouse

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xelth-com/eckwms3d/internal/database"
	"github.com/xelth-com/eckwms3d/internal/models"
)

// StockLine is one quantity reported by an external stock source.
type StockLine struct {
	BinCode  string
	SKU      string
	Name     string
	Batch    string
	Quantity float64
}

// Store is the persistence the service needs.
type Store interface {
	Warehouse(ctx context.Context, code string) (*models.Warehouse, error)
	Bins(ctx context.Context, warehouseID uint) ([]models.StorageBin, error)
	Bin(ctx context.Context, warehouseID uint, code string) (*models.StorageBin, error)
	MoveBin(ctx context.Context, bin *models.StorageBin, move *models.BinMove) error
	SetProduct(ctx context.Context, bin *models.StorageBin, p models.ProductRecord) error
	SetABC(ctx context.Context, warehouseID uint, classes map[string]string) error
	UpsertBins(ctx context.Context, warehouseID uint, bins []models.BinRecord) error
	ApplyStock(ctx context.Context, warehouseID uint, lines []StockLine) (int, error)
	Moves(ctx context.Context, limit int) ([]models.BinMove, error)
}

// GormStore keeps warehouse data in PostgreSQL.
type GormStore struct {
	db *database.DB
}

func NewGormStore(db *database.DB) *GormStore { return &GormStore{db: db} }

// Warehouse loads the warehouse with its config, creating both on first use.
func (s *GormStore) Warehouse(ctx context.Context, code string) (*models.Warehouse, error) {
	var wh models.Warehouse
	err := s.db.WithContext(ctx).Preload("Config").Where("code = ?", code).First(&wh).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wh = models.Warehouse{Code: code, Name: code, Config: &models.WarehouseConfig{}}
		if err := s.db.WithContext(ctx).Create(&wh).Error; err != nil {
			return nil, fmt.Errorf("create warehouse %s: %w", code, err)
		}
		// reload so column defaults are populated
		err = s.db.WithContext(ctx).Preload("Config").First(&wh, wh.ID).Error
	}
	if err != nil {
		return nil, fmt.Errorf("load warehouse %s: %w", code, err)
	}
	return &wh, nil
}

func (s *GormStore) Bins(ctx context.Context, warehouseID uint) ([]models.StorageBin, error) {
	var bins []models.StorageBin
	err := s.db.WithContext(ctx).
		Preload("Stocks", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Stocks.Product").
		Where("warehouse_id = ?", warehouseID).
		Order("row_id, shelf_id, level, bin_code").
		Find(&bins).Error
	if err != nil {
		return nil, fmt.Errorf("load bins: %w", err)
	}
	return bins, nil
}

func (s *GormStore) Bin(ctx context.Context, warehouseID uint, code string) (*models.StorageBin, error) {
	var bin models.StorageBin
	err := s.db.WithContext(ctx).
		Preload("Stocks", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Stocks.Product").
		Where("warehouse_id = ? AND bin_code = ?", warehouseID, code).
		First(&bin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrBinNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("load bin %s: %w", code, err)
	}
	return &bin, nil
}

// MoveBin stores the bin's new zone and position and appends the audit row.
func (s *GormStore) MoveBin(ctx context.Context, bin *models.StorageBin, move *models.BinMove) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.StorageBin{}).Where("id = ?", bin.ID).Updates(map[string]interface{}{
			"zone": bin.Zone,
			"x":    bin.X,
			"y":    bin.Y,
			"z":    bin.Z,
		}).Error
		if err != nil {
			return err
		}
		return tx.Create(move).Error
	})
}

// SetProduct upserts the product by SKU and makes it the bin's first batch.
func (s *GormStore) SetProduct(ctx context.Context, bin *models.StorageBin, p models.ProductRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product := models.Product{SKU: p.SKU, Name: p.Name, ImageURL: p.Image}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "image_url"}),
		}).Create(&product).Error
		if err != nil {
			return err
		}
		if product.ID == 0 {
			if err := tx.Where("sku = ?", p.SKU).First(&product).Error; err != nil {
				return err
			}
		}

		stock := models.BinStock{
			BinID:      bin.ID,
			ProductID:  product.ID,
			Batch:      p.Batch,
			ExpiryDate: models.ParseExpiry(p.Expiry),
			Quantity:   p.Quantity,
		}
		if len(bin.Stocks) > 0 {
			stock.ID = bin.Stocks[0].ID
			stock.HitCount = bin.Stocks[0].HitCount
			stock.ABCClass = bin.Stocks[0].ABCClass
		}
		if stock.ABCClass == "" {
			stock.ABCClass = bin.ABCClass
		}
		return tx.Save(&stock).Error
	})
}

func (s *GormStore) SetABC(ctx context.Context, warehouseID uint, classes map[string]string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for code, class := range classes {
			var bin models.StorageBin
			if err := tx.Where("warehouse_id = ? AND bin_code = ?", warehouseID, code).First(&bin).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			if err := tx.Model(&bin).Update("abc_class", class).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.BinStock{}).Where("bin_id = ?", bin.ID).Update("abc_class", class).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpsertBins writes bins keyed by code, along with their product and stock.
func (s *GormStore) UpsertBins(ctx context.Context, warehouseID uint, bins []models.BinRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range bins {
			bin := models.FromBinRecord(warehouseID, rec)
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "warehouse_id"}, {Name: "bin_code"}},
				DoUpdates: clause.AssignmentColumns([]string{"row_id", "shelf_id", "level", "x", "y", "z", "width", "height", "depth", "abc_class", "updated_at"}),
			}).Create(&bin).Error
			if err != nil {
				return fmt.Errorf("upsert bin %s: %w", rec.BinCode, err)
			}
			if rec.Product == nil || rec.Product.SKU == "" {
				continue
			}
			inner := &GormStore{db: database.Wrap(tx)}
			stored, err := inner.Bin(ctx, warehouseID, bin.BinCode)
			if err != nil {
				return err
			}
			bin = *stored
			p := *rec.Product
			if p.Quantity == 0 {
				p.Quantity = rec.Qty
			}
			if err := inner.SetProduct(ctx, &bin, p); err != nil {
				return fmt.Errorf("stock for %s: %w", rec.BinCode, err)
			}
			if rec.Hits > 0 {
				err := tx.Model(&models.BinStock{}).Where("bin_id = ?", bin.ID).Update("hit_count", int(rec.Hits)).Error
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ApplyStock overwrites quantities of matching bin/SKU pairs and returns how
// many rows changed. Lines for unknown bins are skipped.
func (s *GormStore) ApplyStock(ctx context.Context, warehouseID uint, lines []StockLine) (int, error) {
	updated := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			var bin models.StorageBin
			err := tx.Where("warehouse_id = ? AND bin_code = ?", warehouseID, line.BinCode).First(&bin).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			var product models.Product
			err = tx.Where(models.Product{SKU: line.SKU}).Attrs(models.Product{Name: line.Name}).FirstOrCreate(&product).Error
			if err != nil {
				return err
			}
			stock := models.BinStock{BinID: bin.ID, ProductID: product.ID, Batch: line.Batch}
			err = tx.Where(models.BinStock{BinID: bin.ID, ProductID: product.ID}).
				Attrs(models.BinStock{ABCClass: bin.ABCClass}).
				FirstOrCreate(&stock).Error
			if err != nil {
				return err
			}
			if err := tx.Model(&stock).Update("quantity", line.Quantity).Error; err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	return updated, err
}

func (s *GormStore) Moves(ctx context.Context, limit int) ([]models.BinMove, error) {
	var moves []models.BinMove
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&moves).Error; err != nil {
		return nil, fmt.Errorf("load moves: %w", err)
	}
	return moves, nil
}

var _ Store = (*GormStore)(nil)
