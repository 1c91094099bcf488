package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rpupo63/colbee-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the production document store.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger zerolog.Logger
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		db:     client.Database(database),
		logger: log.With().Str("store", "mongo").Str("database", database).Logger(),
	}, nil
}

func (s *MongoStore) Name() string { return "mongo" }

func (s *MongoStore) Collection(name string) Collection {
	return mongoCollection{coll: s.db.Collection(name)}
}

// Migrate creates the lookup indexes. `id` is unique only where it is set,
// so documents addressed by `_id` alone can coexist.
func (s *MongoStore) Migrate(ctx context.Context, name string) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: models.KeyID, Value: 1}},
			Options: options.Index().
				SetName("id_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{models.KeyID: bson.M{"$type": "string"}}),
		},
		{
			Keys:    bson.D{{Key: models.KeyProjectID, Value: 1}},
			Options: options.Index().SetName("project_id"),
		},
	}
	if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", name, err)
	}
	s.logger.Debug().Str("collection", name).Msg("indexes ensured")
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c mongoCollection) FindOne(ctx context.Context, filter Filter) (models.RawRecord, error) {
	query, ok := mongoFilter(filter)
	if !ok {
		return nil, ErrNoRecord
	}

	var doc bson.M
	err := c.coll.FindOne(ctx, query).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: find %s: %w", c.coll.Name(), err)
	}
	return fromBSON(doc), nil
}

func (c mongoCollection) FindMany(ctx context.Context, filter Filter) ([]models.RawRecord, error) {
	query, ok := mongoFilter(filter)
	if !ok {
		return []models.RawRecord{}, nil
	}

	cursor, err := c.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: models.KeyInternalID, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: find %s: %w", c.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode %s: %w", c.coll.Name(), err)
	}

	records := make([]models.RawRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, fromBSON(doc))
	}
	return records, nil
}

func (c mongoCollection) InsertOne(ctx context.Context, doc models.RawRecord) (string, error) {
	internalID := primitive.NewObjectID()
	insert := bson.M(doc.Without(models.KeyInternalID))
	insert[models.KeyInternalID] = internalID

	if _, err := c.coll.InsertOne(ctx, insert); err != nil {
		return "", fmt.Errorf("mongo: insert %s: %w", c.coll.Name(), err)
	}
	return internalID.Hex(), nil
}

func (c mongoCollection) UpdateOne(ctx context.Context, filter Filter, update Update) (models.RawRecord, error) {
	query, ok := mongoFilter(filter)
	if !ok || filter.IsZero() {
		return nil, ErrNoRecord
	}

	change := bson.M{}
	if set := update.Set.Without(models.KeyInternalID); len(set) > 0 {
		change["$set"] = bson.M(set)
	}
	if len(update.Unset) > 0 {
		unset := bson.M{}
		for _, key := range update.Unset {
			unset[key] = ""
		}
		change["$unset"] = unset
	}
	if len(change) == 0 {
		return c.FindOne(ctx, filter)
	}

	return c.findOneAndUpdate(ctx, query, change)
}

// ToggleOne runs as a pipeline update so the read of the current value and
// the write of its negation are one server-side operation.
func (c mongoCollection) ToggleOne(ctx context.Context, filter Filter, toggle Toggle) (models.RawRecord, error) {
	query, ok := mongoFilter(filter)
	if !ok || filter.IsZero() {
		return nil, ErrNoRecord
	}

	current := bson.A{"$" + toggle.Field}
	for _, key := range toggle.Fallbacks {
		current = append(current, "$"+key)
	}
	current = append(current, false)

	set := bson.M{
		toggle.Field: bson.M{"$in": bson.A{
			bson.M{"$ifNull": current},
			bson.A{false, 0, "", nil},
		}},
	}
	for key, value := range toggle.Set.Without(models.KeyInternalID) {
		set[key] = bson.M{"$literal": value}
	}

	pipeline := mongo.Pipeline{{{Key: "$set", Value: set}}}
	if len(toggle.Fallbacks) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$unset", Value: toggle.Fallbacks}})
	}

	return c.findOneAndUpdate(ctx, query, pipeline)
}

func (c mongoCollection) DeleteOne(ctx context.Context, filter Filter) error {
	query, ok := mongoFilter(filter)
	if !ok || filter.IsZero() {
		return ErrNoRecord
	}

	result, err := c.coll.DeleteOne(ctx, query)
	if err != nil {
		return fmt.Errorf("mongo: delete %s: %w", c.coll.Name(), err)
	}
	if result.DeletedCount == 0 {
		return ErrNoRecord
	}
	return nil
}

func (c mongoCollection) findOneAndUpdate(ctx context.Context, query bson.M, change any) (models.RawRecord, error) {
	var doc bson.M
	err := c.coll.FindOneAndUpdate(ctx, query, change, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: update %s: %w", c.coll.Name(), err)
	}
	return fromBSON(doc), nil
}

// mongoFilter reports false when filter can never match, which is the
// case for an internal id that is not an ObjectID.
func mongoFilter(filter Filter) (bson.M, bool) {
	if filter.IsZero() {
		return bson.M{}, true
	}
	if filter.Field != models.KeyInternalID {
		return bson.M{filter.Field: filter.Value}, true
	}
	oid, err := primitive.ObjectIDFromHex(filter.Value)
	if err != nil {
		return nil, false
	}
	return bson.M{models.KeyInternalID: oid}, true
}

// fromBSON converts driver types into the plain values the normalizers
// understand.
func fromBSON(doc bson.M) models.RawRecord {
	raw := make(models.RawRecord, len(doc))
	for key, value := range doc {
		raw[key] = fromBSONValue(value)
	}
	return raw
}

func fromBSONValue(value any) any {
	switch v := value.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(v.T), 0).UTC()
	case primitive.Decimal128:
		return v.String()
	case primitive.A:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = fromBSONValue(item)
		}
		return out
	case primitive.M:
		return map[string]any(fromBSON(v))
	case primitive.D:
		return map[string]any(fromBSON(v.Map()))
	}
	return value
}
