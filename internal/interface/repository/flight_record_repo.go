package repository

import (
	"context"
	"fmt"
	"time"

	"flightboard-scraper/internal/domain/entity"
	"flightboard-scraper/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// flightDocument is the stored shape of a flight record. Absent optional
// fields are omitted rather than stored as null.
type flightDocument struct {
	FlightNum          string     `bson:"flight_num"`
	Airline            string     `bson:"airline"`
	SrcDest            string     `bson:"src_dest"`
	Gate               *string    `bson:"gate,omitempty"`
	Type               string     `bson:"type"`
	ScheduledTimestamp time.Time  `bson:"scheduled_timestamp"`
	ActualTimestamp    *time.Time `bson:"actual_timestamp,omitempty"`
}

func newFlightDocument(record *entity.FlightRecord) flightDocument {
	return flightDocument{
		FlightNum:          record.FlightNum,
		Airline:            record.Airline,
		SrcDest:            record.SrcDest,
		Gate:               record.Gate,
		Type:               string(record.Type),
		ScheduledTimestamp: record.ScheduledTimestamp,
		ActualTimestamp:    record.ActualTimestamp,
	}
}

// MongoFlightRecordRepository implements FlightRecordRepository
type MongoFlightRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoFlightRecordRepository creates a new flight record repository
func NewMongoFlightRecordRepository(collection *mongo.Collection) repository.FlightRecordRepository {
	return &MongoFlightRecordRepository{
		collection: collection,
	}
}

// EnsureIndexes creates the natural key index backing UpdateActual.
// It is not unique: inserts are at-least-once and a rerun may duplicate a day.
func (r *MongoFlightRecordRepository) EnsureIndexes(ctx context.Context) error {
	keyIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "flight_num", Value: 1},
			{Key: "scheduled_timestamp", Value: 1},
		},
	}

	if _, err := r.collection.Indexes().CreateOne(ctx, keyIndex); err != nil {
		return fmt.Errorf("failed to create flight key index: %w", err)
	}
	return nil
}

// Insert stores the records as new documents
func (r *MongoFlightRecordRepository) Insert(ctx context.Context, records ...*entity.FlightRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(records))
	for _, record := range records {
		docs = append(docs, newFlightDocument(record))
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert flights: %w", err)
	}

	return len(result.InsertedIDs), nil
}

// UpdateActual sets actual_timestamp on the one document matching the natural key
func (r *MongoFlightRecordRepository) UpdateActual(ctx context.Context, key entity.NaturalKey, actual time.Time) (entity.UpdateOutcome, error) {
	filter := bson.M{
		"flight_num":          key.FlightNum,
		"scheduled_timestamp": key.ScheduledTimestamp,
	}
	update := bson.M{
		"$set": bson.M{
			"actual_timestamp": actual,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return entity.UpdateOutcome{}, fmt.Errorf("failed to update flight %s: %w", key.FlightNum, err)
	}

	return entity.UpdateOutcome{
		Matched:  result.MatchedCount,
		Modified: result.ModifiedCount,
	}, nil
}
