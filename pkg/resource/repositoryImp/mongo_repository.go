package repositoryImp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"farmtech/entities"
	"farmtech/pkg/resource/repository"
)

const CollectionName = "resources"

type mongoRepo struct{ coll *mongo.Collection }

// NewMongo stores listings as documents keyed by their uuid string.
func NewMongo(db *mongo.Database) repository.ResourceRepository {
	return &mongoRepo{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the provider and availability indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "provider", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isAvailable", Value: 1}, {Key: "type", Value: 1}, {Key: "serviceType", Value: 1}}},
	})
	return err
}

func (r *mongoRepo) Create(ctx context.Context, res *entities.Resource) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	res.CreatedAt, res.UpdatedAt = now, now
	if err := res.Validate(); err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, res); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

func (r *mongoRepo) findOne(ctx context.Context, filter bson.M) (*entities.Resource, error) {
	var res entities.Resource
	if err := r.coll.FindOne(ctx, filter).Decode(&res); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find resource: %w", err)
	}
	return &res, nil
}

func (r *mongoRepo) FindByID(ctx context.Context, id string) (*entities.Resource, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoRepo) FindOwned(ctx context.Context, id, providerID string) (*entities.Resource, error) {
	return r.findOne(ctx, bson.M{"_id": id, "provider": providerID})
}

func (r *mongoRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]entities.Resource, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	rs := []entities.Resource{}
	if err := cur.All(ctx, &rs); err != nil {
		return nil, err
	}
	return rs, nil
}

func (r *mongoRepo) ListByProvider(ctx context.Context, providerID string) ([]entities.Resource, error) {
	rs, err := r.find(ctx, bson.M{"provider": providerID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list provider resources: %w", err)
	}
	return rs, nil
}

func (r *mongoRepo) FindAvailable(ctx context.Context, q repository.Query) ([]entities.Resource, error) {
	filter := bson.M{"isAvailable": true}
	if q.Type != nil {
		filter["type"] = string(*q.Type)
	}
	if q.ServiceType != nil {
		filter["serviceType"] = string(*q.ServiceType)
	}
	rs, err := r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find available resources: %w", err)
	}
	return rs, nil
}

func (r *mongoRepo) Update(ctx context.Context, res *entities.Resource) error {
	if err := res.Validate(); err != nil {
		return err
	}
	res.UpdatedAt = time.Now().UTC()
	out, err := r.coll.ReplaceOne(ctx, bson.M{"_id": res.ID}, res)
	if err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	if out.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoRepo) DeleteOwned(ctx context.Context, id, providerID string) error {
	out, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "provider": providerID})
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if out.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
