package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/planactions/customfields/internal/core/domain"
)

const collectionCustomFields = "custom_fields"

// FieldRepository stores field definitions, one document per key. It is also
// the SchemaSource read by the schema cache.
type FieldRepository struct {
	col *mongo.Collection
}

func NewFieldRepository(db *mongo.Database) *FieldRepository {
	return &FieldRepository{col: db.Collection(collectionCustomFields)}
}

// List returns every definition ordered by position, then key.
func (r *FieldRepository) List(ctx context.Context) ([]domain.FieldDefinition, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "key", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	defs := make([]domain.FieldDefinition, 0)
	for cur.Next(ctx) {
		def, err := decodeField(cur.Current)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if err := cur.Err(); err != nil {
		return nil, translate(err)
	}
	return defs, nil
}

// FetchSchema reads the whole schema in one query. The snapshot version is
// the latest definition update.
func (r *FieldRepository) FetchSchema(ctx context.Context) (domain.Schema, error) {
	defs, err := r.List(ctx)
	if err != nil {
		return domain.Schema{}, fmt.Errorf("fetch schema: %w", err)
	}
	s := domain.Schema{Fields: defs}
	for _, d := range defs {
		if d.UpdatedAt.After(s.Version) {
			s.Version = d.UpdatedAt
		}
	}
	return s, nil
}

func (r *FieldRepository) Get(ctx context.Context, key string) (*domain.FieldDefinition, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	raw, err := r.col.FindOne(ctx, bson.M{"key": key}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrFieldNotFound
		}
		return nil, translate(err)
	}
	def, err := decodeField(raw)
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// decodeField reads one stored definition. Documents written before the
// active flag existed have no such attribute and are active.
func decodeField(raw bson.Raw) (domain.FieldDefinition, error) {
	var def domain.FieldDefinition
	if err := bson.Unmarshal(raw, &def); err != nil {
		return domain.FieldDefinition{}, fmt.Errorf("decode field: %w", err)
	}
	if _, err := raw.LookupErr("active"); err != nil {
		def.Active = true
	}
	return def, nil
}

func (r *FieldRepository) Create(ctx context.Context, def *domain.FieldDefinition) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, def); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrFieldExists
		}
		return translate(err)
	}
	return nil
}

// Update replaces the whole document; options travel with it.
func (r *FieldRepository) Update(ctx context.Context, def *domain.FieldDefinition) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"key": def.Key}, def)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrFieldNotFound
	}
	return nil
}

func (r *FieldRepository) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"key": key})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrFieldNotFound
	}
	return nil
}

// EnsureIndexes creates the unique key index on the custom_fields collection.
func (r *FieldRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "position", Value: 1}}},
	})
	return err
}
