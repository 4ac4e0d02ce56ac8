package region

import (
	"time"
)

// Region types form a strict 4-level tree: state → district → area → unit.
// A region's type fixes the type its parent must have, so cycles are
// structurally impossible.
const (
	TypeState    = "state"
	TypeDistrict = "district"
	TypeArea     = "area"
	TypeUnit     = "unit"
)

// ParentTypeOf maps a region type to the required type of its parent.
// States have no parent.
var ParentTypeOf = map[string]string{
	TypeDistrict: TypeState,
	TypeArea:     TypeDistrict,
	TypeUnit:     TypeArea,
}

type Region struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"type:varchar(255);not null" json:"name"`
	Code     string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_regions_parent_code" json:"code"`
	Type     string  `gorm:"type:varchar(20);not null;index" json:"type"`
	ParentID *uint   `gorm:"index;uniqueIndex:idx_regions_parent_code" json:"parent_id"` // nil only for state

	// Regions are never hard-deleted because applications reference them
	// permanently
	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Region) TableName() string {
	return "regions"
}

// Request/Response DTOs

type CreateRegionRequest struct {
	Name     string `json:"name" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Type     string `json:"type" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

type UpdateRegionRequest struct {
	Name     *string `json:"name"`
	Code     *string `json:"code"`
	IsActive *bool   `json:"is_active"`
}

type RegionFilter struct {
	Type     string `json:"type"`
	ParentID *uint  `json:"parent_id"`
	Search   string `json:"search"`
	Active   *bool  `json:"active"`
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
}

// RegionNode is the tree-shaped response for hierarchy endpoints
type RegionNode struct {
	Region
	Children []*RegionNode `json:"children,omitempty"`
}
