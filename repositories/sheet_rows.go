package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"forum-harvest/models"
)

type SheetRowRepository struct {
	col *mongo.Collection
}

func NewSheetRowRepository(db *mongo.Database) *SheetRowRepository {
	return &SheetRowRepository{col: db.Collection("sheet_rows")}
}

// ListBySheet returns the rows of a sheet ordered by row number.
func (r *SheetRowRepository) ListBySheet(ctx context.Context, sheetID primitive.ObjectID) ([]models.SheetRow, error) {
	opts := options.Find().SetSort(bson.D{{Key: "row", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"sheet_id": sheetID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.SheetRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ShiftDown moves every row at or below fromRow down by one.
func (r *SheetRowRepository) ShiftDown(ctx context.Context, sheetID primitive.ObjectID, fromRow int) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"sheet_id": sheetID, "row": bson.M{"$gte": fromRow}},
		bson.M{"$inc": bson.M{"row": 1}},
	)
	return err
}

// UpsertRows writes rows starting at startRow in a single bulk write.
func (r *SheetRowRepository) UpsertRows(ctx context.Context, sheetID primitive.ObjectID, startRow int, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now()
	writes := make([]mongo.WriteModel, 0, len(rows))
	for i, values := range rows {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"sheet_id": sheetID, "row": startRow + i}).
			SetUpdate(bson.M{"$set": bson.M{"values": values, "updated_at": now}}).
			SetUpsert(true))
	}
	_, err := r.col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	return err
}
