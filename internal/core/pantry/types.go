package pantry

import (
	"context"
	"time"
)

// QuantityEstimate 庫存量估計
type QuantityEstimate string

const (
	QuantityUnset      QuantityEstimate = ""
	QuantityPlenty     QuantityEstimate = "plenty"
	QuantityJustEnough QuantityEstimate = "just enough"
	QuantityRunningLow QuantityEstimate = "running low"
)

// Valid 檢查估計值是否合法（空值視為未設定）
func (q QuantityEstimate) Valid() bool {
	switch q {
	case QuantityUnset, QuantityPlenty, QuantityJustEnough, QuantityRunningLow:
		return true
	}
	return false
}

// Entry 家庭食材櫃項目，以 (HouseholdID, IngredientID) 唯一
type Entry struct {
	HouseholdID  int64            `json:"household_id"`
	IngredientID int64            `json:"ingredient_id"`
	IsAvailable  bool             `json:"is_available"`
	Quantity     QuantityEstimate `json:"quantity_estimate,omitempty"`
	LastUpdated  time.Time        `json:"last_updated"`
}

// EntryView 附帶食材名稱與分類的項目
type EntryView struct {
	Entry
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Stats 食材櫃統計
type Stats struct {
	Total      int            `json:"total"`
	Available  int            `json:"available"`
	RunningLow int            `json:"running_low"`
	ByCategory map[string]int `json:"by_category"`
}

// Repository 食材櫃儲存介面
type Repository interface {
	GetPantryEntry(ctx context.Context, householdID, ingredientID int64) (*Entry, error)
	ListPantry(ctx context.Context, householdID int64) ([]Entry, error)
	UpsertPantryEntry(ctx context.Context, e *Entry) error
	DeletePantryEntry(ctx context.Context, householdID, ingredientID int64) error
}
