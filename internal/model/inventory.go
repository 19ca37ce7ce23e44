package model

import (
	"time"
)

type Inventory struct {
	Base
	ItemName  string    `db:"item_name" json:"item_name"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Date      time.Time `db:"date" json:"date"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type InventoryRequest struct {
	ItemName string `json:"item_name" binding:"required,max=100"`
	Quantity *int   `json:"quantity" binding:"required,min=0"`
	Date     string `json:"date" binding:"required,datetime=2006-01-02"`
}
