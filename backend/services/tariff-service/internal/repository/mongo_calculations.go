package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"meterbill/backend/services/tariff-service/internal/models"
)

const collectionCalculations = "electricity_calculations"

// MongoCalculationRepository persists history in a mongo collection.
type MongoCalculationRepository struct {
	collection *mongo.Collection
}

// NewMongoCalculationRepository returns repository bound to db.
func NewMongoCalculationRepository(db *mongo.Database) *MongoCalculationRepository {
	return &MongoCalculationRepository{collection: db.Collection(collectionCalculations)}
}

// EnsureIndexes creates the timestamp index used by List.
func (r *MongoCalculationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	return err
}

// Create inserts a calculation.
func (r *MongoCalculationRepository) Create(ctx context.Context, calc *models.Calculation) error {
	_, err := r.collection.InsertOne(ctx, calc)
	return err
}

// List returns latest calculations.
func (r *MongoCalculationRepository) List(ctx context.Context, limit int) ([]models.Calculation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var calcs []models.Calculation
	if err := cursor.All(ctx, &calcs); err != nil {
		return nil, err
	}
	for i := range calcs {
		calcs[i].Timestamp = calcs[i].Timestamp.UTC()
	}
	return calcs, nil
}

// DeleteAll removes every calculation.
func (r *MongoCalculationRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
