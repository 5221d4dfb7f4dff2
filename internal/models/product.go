package models

import "strconv"

// Product is the SKU master record
type Product struct {
	ID       uint   `gorm:"primaryKey" json:"id" xmlrpc:"id"`
	SKU      string `gorm:"type:varchar(50);not null;uniqueIndex" json:"sku" xmlrpc:"default_code"`
	Name     string `gorm:"type:varchar(200)" json:"name" xmlrpc:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

func (Product) TableName() string { return "products" }

// GetEntityID implements Entity
func (p Product) GetEntityID() string { return strconv.FormatUint(uint64(p.ID), 10) }

// GetEntityType implements Entity
func (p Product) GetEntityType() string { return "product" }

// GetEntityID implements Entity
func (b StorageBin) GetEntityID() string { return b.BinCode }

// GetEntityType implements Entity
func (b StorageBin) GetEntityType() string { return "bin" }

// GetEntityID implements Entity
func (w Warehouse) GetEntityID() string { return w.Code }

// GetEntityType implements Entity
func (w Warehouse) GetEntityType() string { return "warehouse" }
