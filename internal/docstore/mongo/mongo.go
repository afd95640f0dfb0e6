// Package mongo is the remote document store adapter. Documents are keyed
// by their full path in a single collection; live subscriptions ride on
// change streams, so the deployment needs a replica set.
package mongo

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homebudget/internal/docstore"
)

const collectionName = "documents"

type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type storedDocument struct {
	Path      string `bson:"_id"`
	Data      bson.M `bson:"data"`
	UpdatedAt int64  `bson:"updatedAt"`
}

func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return &Store{
		client: client,
		coll:   client.Database(dbName).Collection(collectionName),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) GetDocument(ctx context.Context, path string) (docstore.Document, error) {
	var doc storedDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": path}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", path, err)
	}
	return docstore.Document(doc.Data), nil
}

func (s *Store) SetDocument(ctx context.Context, path string, data docstore.Document, merge bool) error {
	now := time.Now().UnixMilli()
	if merge {
		// Merge writes update top-level fields atomically instead of
		// racing a read-modify-write cycle.
		set := bson.M{"updatedAt": now}
		for k, v := range data {
			set["data."+k] = v
		}
		opts := options.Update().SetUpsert(true)
		if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": path}, bson.M{"$set": set}, opts); err != nil {
			return fmt.Errorf("merge document %s: %w", path, err)
		}
		return nil
	}
	doc := storedDocument{Path: path, Data: bson.M(data), UpdatedAt: now}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": path}, doc, opts); err != nil {
		return fmt.Errorf("write document %s: %w", path, err)
	}
	return nil
}

func (s *Store) AddDocument(ctx context.Context, collectionPath string, data docstore.Document) (string, error) {
	id := uuid.NewString()
	if err := s.SetDocument(ctx, collectionPath+"/"+id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) DeleteDocument(ctx context.Context, path string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": path}); err != nil {
		return fmt.Errorf("delete document %s: %w", path, err)
	}
	return nil
}

func (s *Store) ListCollection(ctx context.Context, collectionPath string) ([]docstore.Record, error) {
	prefix := collectionPath + "/"
	filter := bson.M{"_id": primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(prefix) + "[^/]+$",
	}}
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list collection %s: %w", collectionPath, err)
	}
	defer cursor.Close(ctx)

	var out []docstore.Record
	for cursor.Next(ctx) {
		var doc storedDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, docstore.Record{
			ID:   strings.TrimPrefix(doc.Path, prefix),
			Data: docstore.Document(doc.Data),
		})
	}
	return out, cursor.Err()
}

type changeEvent struct {
	OperationType string         `bson:"operationType"`
	FullDocument  storedDocument `bson:"fullDocument"`
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (sub *subscription) Stop() {
	sub.once.Do(func() {
		sub.cancel()
		<-sub.done
	})
}

func (s *Store) Subscribe(ctx context.Context, path string, onData func(docstore.Document, bool), onError func(error)) (docstore.Subscription, error) {
	streamCtx, cancel := context.WithCancel(context.Background())

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: path}}}},
	}
	stream, err := s.coll.Watch(streamCtx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch document %s: %w", path, err)
	}

	// Initial snapshot before streaming changes, matching the listener
	// contract of the persistence service.
	doc, err := s.GetDocument(ctx, path)
	if err != nil && err != docstore.ErrNotFound {
		cancel()
		stream.Close(context.Background())
		return nil, err
	}
	onData(doc, err == nil)

	sub := &subscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		defer stream.Close(context.Background())
		for stream.Next(streamCtx) {
			var ev changeEvent
			if err := stream.Decode(&ev); err != nil {
				onError(fmt.Errorf("decode change event: %w", err))
				return
			}
			switch ev.OperationType {
			case "delete":
				onData(nil, false)
			case "insert", "update", "replace":
				onData(docstore.Document(ev.FullDocument.Data), true)
			}
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			onError(fmt.Errorf("change stream for %s: %w", path, err))
		}
	}()
	return sub, nil
}
