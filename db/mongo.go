package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"forum-harvest/logger"
)

// Connect opens a client, verifies it with a ping and ensures the sheet indexes.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	database := client.Database(dbName)
	if err := ensureIndexes(ctx, database); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	logger.Log.Infof("MongoDB connected (db=%s) and indexes ensured", dbName)
	return client, database, nil
}

func ensureIndexes(ctx context.Context, d *mongo.Database) error {
	// sheets: unique (workbook, title)
	{
		mi := mongo.IndexModel{
			Keys:    bson.D{{Key: "workbook", Value: 1}, {Key: "title", Value: 1}},
			Options: options.Index().SetName("uniq_workbook_title").SetUnique(true),
		}
		if _, err := d.Collection("sheets").Indexes().CreateOne(ctx, mi); err != nil {
			return err
		}
	}

	// sheet_rows: (sheet_id, row). Not unique: inserting a row shifts the rows below it
	// with one $inc, which would collide transiently under a unique index.
	{
		if _, err := d.Collection("sheet_rows").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "sheet_id", Value: 1}, {Key: "row", Value: 1}},
			Options: options.Index().SetName("idx_sheet_row"),
		}); err != nil {
			return err
		}
	}
	return nil
}
