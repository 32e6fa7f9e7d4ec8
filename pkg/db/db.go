package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cr-transcripts/pkg/domain"
)

// MongoStore wraps the MongoDB client and the transcript collection
type MongoStore struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	collection  *mongo.Collection
}

// NewMongoStore creates a new MongoDB-backed store
func NewMongoStore(connectionString, databaseName, collectionName string) *MongoStore {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return store with nil - error will be caught during Connect()
		return &MongoStore{}
	}

	database := mongoClient.Database(databaseName)
	collection := database.Collection(collectionName)

	return &MongoStore{
		mongoClient: mongoClient,
		database:    database,
		collection:  collection,
	}
}

// Connect verifies the connection and ensures the unique filename index exists
func (s *MongoStore) Connect(ctx context.Context) error {
	if s.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	if err := s.mongoClient.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}

	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "filename", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create filename index: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection
func (s *MongoStore) Close(ctx context.Context) error {
	if s.mongoClient == nil {
		return nil
	}
	return s.mongoClient.Disconnect(ctx)
}

// SaveTranscript saves a transcript document to the database
func (s *MongoStore) SaveTranscript(ctx context.Context, doc *domain.TranscriptDocument) error {
	if s.collection == nil {
		return fmt.Errorf("collection not initialized")
	}

	// Filename is the unique identifier for the upsert
	filter := bson.M{"filename": doc.Filename}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	_, err := s.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetAllFilenames fetches all stored filenames and returns them as a set
func (s *MongoStore) GetAllFilenames(ctx context.Context) (domain.FileSet, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"filename": 1, "_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to query filenames: %w", err)
	}
	defer cursor.Close(ctx)

	files := make(domain.FileSet)
	for cursor.Next(ctx) {
		var result struct {
			Filename string `bson:"filename"`
		}
		if err := cursor.Decode(&result); err != nil {
			continue // Skip invalid documents
		}
		if result.Filename != "" {
			files.Add(result.Filename)
		}
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return files, nil
}

// GetAllTranscripts loads every stored transcript document
func (s *MongoStore) GetAllTranscripts(ctx context.Context) ([]domain.TranscriptDocument, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "filename", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query transcripts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []domain.TranscriptDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transcripts: %w", err)
	}
	return docs, nil
}
