package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"forum-harvest/models"
)

type SheetRepository struct {
	col *mongo.Collection
}

func NewSheetRepository(db *mongo.Database) *SheetRepository {
	return &SheetRepository{col: db.Collection("sheets")}
}

// FindByTitle returns mongo.ErrNoDocuments when the sheet does not exist.
func (r *SheetRepository) FindByTitle(ctx context.Context, workbook, title string) (*models.SheetMeta, error) {
	var s models.SheetMeta
	if err := r.col.FindOne(ctx, bson.M{"workbook": workbook, "title": title}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Insert stores a new sheet and fills its ID.
func (r *SheetRepository) Insert(ctx context.Context, s *models.SheetMeta) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, s)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		s.ID = oid
	}
	return nil
}

// Grow raises the recorded grid size to at least rows×cols.
func (r *SheetRepository) Grow(ctx context.Context, id primitive.ObjectID, rows, cols int) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$max": bson.M{"row_count": rows, "col_count": cols},
		"$set": bson.M{"updated_at": time.Now()},
	})
	return err
}
