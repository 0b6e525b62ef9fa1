package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alexbilevskiy/tgfolders/internal/model"
)

type snapshotDoc struct {
	Id        string    `bson:"id"`
	Kind      string    `bson:"kind"`
	CreatedAt time.Time `bson:"createdat"`
	Folders   int       `bson:"folders"`
	Payload   string    `bson:"payload,omitempty"`
}

type MongoStore struct {
	client        *mongo.Client
	snapshotsColl *mongo.Collection
}

func NewMongoStore(mongoClient *mongo.Client, db string) *MongoStore {
	if db == "" {
		db = "tgfolders"
	}

	return &MongoStore{
		client:        mongoClient,
		snapshotsColl: mongoClient.Database(db).Collection("snapshots"),
	}
}

func (m *MongoStore) Save(ctx context.Context, kind string, snapshot *model.Snapshot) (*SnapshotRecord, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	doc := snapshotDoc{
		Id:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Folders:   countFolders(snapshot),
		Payload:   string(payload),
	}
	mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := m.snapshotsColl.InsertOne(mctx, doc); err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	return &SnapshotRecord{Id: doc.Id, Kind: doc.Kind, CreatedAt: doc.CreatedAt, Folders: doc.Folders, Snapshot: snapshot}, nil
}

func (m *MongoStore) Get(ctx context.Context, id string) (*SnapshotRecord, error) {
	mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return m.findOne(mctx, bson.D{{Key: "id", Value: id}}, options.FindOne())
}

func (m *MongoStore) Latest(ctx context.Context, kind string) (*SnapshotRecord, error) {
	crit := bson.D{}
	if kind != "" {
		crit = bson.D{{Key: "kind", Value: kind}}
	}
	mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return m.findOne(mctx, crit, options.FindOne().SetSort(bson.D{{Key: "createdat", Value: -1}}))
}

func (m *MongoStore) findOne(ctx context.Context, crit bson.D, opts *options.FindOneOptions) (*SnapshotRecord, error) {
	var doc snapshotDoc
	err := m.snapshotsColl.FindOne(ctx, crit, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find snapshot: %w", err)
	}
	rec := recordFromDoc(doc)
	rec.Snapshot = &model.Snapshot{}
	if err := json.Unmarshal([]byte(doc.Payload), rec.Snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", doc.Id, err)
	}

	return rec, nil
}

func (m *MongoStore) List(ctx context.Context, limit int) ([]*SnapshotRecord, error) {
	mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Find().
		SetSort(bson.D{{Key: "createdat", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.D{{Key: "payload", Value: 0}})
	cur, err := m.snapshotsColl.Find(mctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var docs []snapshotDoc
	if err := cur.All(mctx, &docs); err != nil {
		return nil, fmt.Errorf("list snapshots cursor: %w", err)
	}
	res := make([]*SnapshotRecord, 0, len(docs))
	for _, doc := range docs {
		res = append(res, recordFromDoc(doc))
	}

	return res, nil
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func recordFromDoc(doc snapshotDoc) *SnapshotRecord {
	return &SnapshotRecord{Id: doc.Id, Kind: doc.Kind, CreatedAt: doc.CreatedAt.UTC(), Folders: doc.Folders}
}
