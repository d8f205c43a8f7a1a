package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/planactions/customfields/internal/core/domain"
)

const collectionActions = "actions"

// RecordRepository reads and writes the custom map of action documents.
// Records are addressed by act_id.
type RecordRepository struct {
	col *mongo.Collection
}

func NewRecordRepository(db *mongo.Database) *RecordRepository {
	return &RecordRepository{col: db.Collection(collectionActions)}
}

func (r *RecordRepository) Get(ctx context.Context, id string) (*domain.ActionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec domain.ActionRecord
	opts := options.FindOne().SetProjection(bson.M{"act_id": 1, "titre": 1, "custom": 1, "updated_at": 1})
	err := r.col.FindOne(ctx, bson.M{"act_id": id}, opts).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, translate(err)
	}
	rec.Custom = normalizeMap(rec.Custom)
	return &rec, nil
}

// ReplaceCustom overwrites the whole custom map in a single update.
func (r *RecordRepository) ReplaceCustom(ctx context.Context, id string, values domain.ValueMap) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if values == nil {
		values = domain.ValueMap{}
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"act_id": id},
		bson.M{"$set": bson.M{"custom": values, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *RecordRepository) CountWithKey(ctx context.Context, key string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"custom." + key: bson.M{"$exists": true}})
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// ScanValues streams every value stored under key. The caller's context
// bounds the scan; no per-call timeout is applied.
func (r *RecordRepository) ScanValues(ctx context.Context, key string, fn func(recordID string, value any) error) error {
	opts := options.Find().
		SetProjection(bson.M{"act_id": 1, "custom." + key: 1}).
		SetBatchSize(500)
	cur, err := r.col.Find(ctx, bson.M{"custom." + key: bson.M{"$exists": true}}, opts)
	if err != nil {
		return translate(err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc struct {
			ActID  string         `bson:"act_id"`
			Custom map[string]any `bson:"custom"`
		}
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		if err := fn(doc.ActID, normalize(doc.Custom[key])); err != nil {
			return err
		}
	}
	return translate(cur.Err())
}

// EnsureIndexes creates the act_id lookup index on the actions collection.
func (r *RecordRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "act_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// normalizeMap converts driver types into the plain Go values the field
// registry coerces.
func normalizeMap(m domain.ValueMap) domain.ValueMap {
	if m == nil {
		return domain.ValueMap{}
	}
	out := make(domain.ValueMap, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func normalize(v any) any {
	switch tv := v.(type) {
	case primitive.A:
		out := make([]any, len(tv))
		for i, el := range tv {
			out[i] = normalize(el)
		}
		return out
	case primitive.D:
		m := make(map[string]any, len(tv))
		for _, e := range tv {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case primitive.DateTime:
		return tv.Time().UTC()
	case primitive.Decimal128:
		return tv.String()
	}
	return v
}
