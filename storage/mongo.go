package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// MongoStore persists tickets in MongoDB with the same contract as the
// sqlite backend. The monotonic surrogate id comes from a counter document,
// since Mongo has no autoincrement of its own.
type MongoStore struct {
	uri    string
	dbName string
	log    *zap.Logger

	client   *mongo.Client
	tickets  *mongo.Collection
	counters *mongo.Collection
}

func NewMongoStore(uri, dbName string, log *zap.Logger) *MongoStore {
	return &MongoStore{uri: uri, dbName: dbName, log: log}
}

type mongoTicket struct {
	ID         int64      `bson:"id"`
	ChannelID  string     `bson:"channel_id"`
	UserID     string     `bson:"user_id"`
	CreatedAt  time.Time  `bson:"created_at"`
	ClosedAt   *time.Time `bson:"closed_at"`
	Transcript *string    `bson:"transcript"`
}

func (m *MongoStore) Init() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(m.uri))
	if err != nil {
		return &InitError{Err: err}
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return &InitError{Err: err}
	}

	m.client = client
	db := client.Database(m.dbName)
	m.tickets = db.Collection("tickets")
	m.counters = db.Collection("counters")

	_, err = m.tickets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "channel_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return &InitError{Err: err}
	}
	_, _ = m.tickets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})

	m.log.Info("mongodb ticket store initialised", zap.String("database", m.dbName))
	return nil
}

func (m *MongoStore) nextID(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := m.counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": "tickets"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

func (m *MongoStore) Create(channelID, userID string) error {
	if m.tickets == nil {
		if err := m.Init(); err != nil {
			return &WriteError{Op: "create", Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := m.nextID(ctx)
	if err != nil {
		return &WriteError{Op: "create", Err: err}
	}

	_, err = m.tickets.InsertOne(ctx, mongoTicket{
		ID:        id,
		ChannelID: channelID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &DuplicateChannelError{ChannelID: channelID}
		}
		return &WriteError{Op: "create", Err: err}
	}
	return nil
}

func (m *MongoStore) Close(channelID string, transcript *string) error {
	if m.tickets == nil {
		if err := m.Init(); err != nil {
			return &WriteError{Op: "close", Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Pipeline update so closed_at stays write-once, mirroring the sqlite
	// COALESCE. $literal guards the transcript from expression evaluation.
	var transcriptValue any
	if transcript != nil {
		transcriptValue = bson.M{"$literal": *transcript}
	}
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"closed_at":  bson.M{"$ifNull": bson.A{"$closed_at", time.Now().UTC()}},
			"transcript": transcriptValue,
		}}},
	}

	_, err := m.tickets.UpdateOne(ctx, bson.M{"channel_id": channelID}, update)
	if err != nil {
		return &WriteError{Op: "close", Err: err}
	}
	return nil
}

func (m *MongoStore) Get(channelID string) (*TicketRecord, error) {
	if m.tickets == nil {
		if err := m.Init(); err != nil {
			return nil, &ReadError{Op: "get", Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var doc mongoTicket
	err := m.tickets.FindOne(ctx, bson.M{"channel_id": channelID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, &ReadError{Op: "get", Err: err}
	}
	return doc.record(), nil
}

func (m *MongoStore) ListByUser(userID string) ([]TicketRecord, error) {
	if m.tickets == nil {
		if err := m.Init(); err != nil {
			return nil, &ReadError{Op: "list", Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.tickets.Find(
		ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: -1}}),
	)
	if err != nil {
		return nil, &ReadError{Op: "list", Err: err}
	}
	defer cursor.Close(ctx)

	var records []TicketRecord
	for cursor.Next(ctx) {
		var doc mongoTicket
		if err := cursor.Decode(&doc); err != nil {
			return nil, &ReadError{Op: "list", Err: err}
		}
		records = append(records, *doc.record())
	}
	if err := cursor.Err(); err != nil {
		return nil, &ReadError{Op: "list", Err: err}
	}
	return records, nil
}

func (m *MongoStore) Shutdown() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (t *mongoTicket) record() *TicketRecord {
	return &TicketRecord{
		ID:         t.ID,
		ChannelID:  t.ChannelID,
		UserID:     t.UserID,
		CreatedAt:  t.CreatedAt,
		ClosedAt:   t.ClosedAt,
		Transcript: t.Transcript,
	}
}
