package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"screening-datagen/pkg"
)

const mongoCollection = "sessions"

// MongoSink inserts each record as a document into the sessions
// collection.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// sessionDocument keeps the record as a nested document next to the fields
// listings filter on.
type sessionDocument struct {
	RunID      string             `bson:"_id"`
	AgentID    string             `bson:"agent_id"`
	TemplateID string             `bson:"template_id"`
	PersonaID  string             `bson:"persona_id"`
	CreatedAt  time.Time          `bson:"created_at"`
	Record     *pkg.SessionRecord `bson:"record"`
}

// NewMongoSink connects to uri and verifies the connection.
func NewMongoSink(ctx context.Context, uri, database string) (*MongoSink, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, wrapError("mongo", "connect", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, wrapError("mongo", "ping", err)
	}
	return &MongoSink{client: client, collection: client.Database(database).Collection(mongoCollection)}, nil
}

func (s *MongoSink) Save(ctx context.Context, rec *pkg.SessionRecord) (string, error) {
	doc := sessionDocument{
		RunID:      rec.RunID,
		AgentID:    rec.AgentID,
		TemplateID: rec.Profile.TemplateID,
		PersonaID:  rec.Persona.ID,
		CreatedAt:  rec.CreatedAt,
		Record:     rec,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return "", wrapError("mongo", "insert", err)
	}
	return "mongo://" + mongoCollection + "/" + rec.RunID, nil
}

// CountByTemplate counts stored sessions generated from templateID.
func (s *MongoSink) CountByTemplate(ctx context.Context, templateID string) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"template_id": templateID})
	return n, wrapError("mongo", "count", err)
}

func (s *MongoSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
