package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SheetMeta describes a sheet emulated in MongoDB.
// Collection: sheets
type SheetMeta struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
	Workbook  string             `bson:"workbook" json:"workbook"`
	Title     string             `bson:"title" json:"title"`
	RowCount  int                `bson:"row_count" json:"row_count"`
	ColCount  int                `bson:"col_count" json:"col_count"`
}

// SheetRow is one row of an emulated sheet. Row is 1-based.
// Collection: sheet_rows
type SheetRow struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SheetID   primitive.ObjectID `bson:"sheet_id" json:"sheet_id"`
	Row       int                `bson:"row" json:"row"`
	Values    []string           `bson:"values" json:"values"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
