package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"storefront-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CategoryRepository struct {
	collection    *mongo.Collection
	subcategories *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{
		collection:    db.Collection("categories"),
		subcategories: db.Collection("subcategories"),
	}
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	categories := []models.Category{}
	if len(ids) == 0 {
		return categories, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *CategoryRepository) FindByNameFold(ctx context.Context, name string) (*models.Category, error) {
	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"}
	return r.findOne(ctx, bson.M{"name": pattern})
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.Subcategories == nil {
		category.Subcategories = []primitive.ObjectID{}
	}
	res, err := r.collection.InsertOne(ctx, category)
	if err != nil {
		return translate(err)
	}
	category.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ListWithSubcategories joins each category with its subcategories,
// projected to {_id, name}, preserving the category's ordering.
func (r *CategoryRepository) ListWithSubcategories(ctx context.Context) ([]models.CategoryListing, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from": "subcategories",
			"let":  bson.M{"ids": "$subcategories"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$in": bson.A{"$_id", bson.M{"$ifNull": bson.A{"$$ids", bson.A{}}}}}}},
				bson.M{"$project": bson.M{"_id": 1, "name": 1}},
			},
			"as": "subcategoryDocs",
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":  1,
			"name": 1,
			"subcategories": bson.M{"$map": bson.M{
				"input": bson.M{"$ifNull": bson.A{"$subcategories", bson.A{}}},
				"as":    "sid",
				"in": bson.M{"$first": bson.M{"$filter": bson.M{
					"input": "$subcategoryDocs",
					"cond":  bson.M{"$eq": bson.A{"$$this._id", "$$sid"}},
				}}},
			}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	listings := []models.CategoryListing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, err
	}
	for i := range listings {
		listings[i].Subcategories = compactRefs(listings[i].Subcategories)
	}
	return listings, nil
}

func (r *CategoryRepository) FindSubcategories(ctx context.Context, ids []primitive.ObjectID) ([]models.Subcategory, error) {
	subs := []models.Subcategory{}
	if len(ids) == 0 {
		return subs, nil
	}
	cursor, err := r.subcategories.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return orderSubcategories(subs, ids), nil
}

// AddSubcategory inserts sub and links it to its category in one
// transaction. Standalone servers reject transactions; there the two writes
// run in sequence and the insert is undone if the link fails.
func (r *CategoryRepository) AddSubcategory(ctx context.Context, sub *models.Subcategory) error {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}

	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.subcategories.InsertOne(sc, sub); err != nil {
			return nil, err
		}
		return nil, r.linkSubcategory(sc, sub)
	})
	if isTransactionUnsupported(err) {
		return r.addSubcategoryInSequence(ctx, sub)
	}
	return translate(err)
}

func (r *CategoryRepository) addSubcategoryInSequence(ctx context.Context, sub *models.Subcategory) error {
	if _, err := r.subcategories.InsertOne(ctx, sub); err != nil {
		return translate(err)
	}
	if err := r.linkSubcategory(ctx, sub); err != nil {
		if _, delErr := r.subcategories.DeleteOne(context.WithoutCancel(ctx), bson.M{"_id": sub.ID}); delErr != nil {
			return errors.Join(translate(err), delErr)
		}
		return translate(err)
	}
	return nil
}

func (r *CategoryRepository) linkSubcategory(ctx context.Context, sub *models.Subcategory) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": sub.CategoryID},
		bson.M{"$push": bson.M{"subcategories": sub.ID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// illegalOperation is returned by servers that cannot run transactions.
const illegalOperation = 20

func isTransactionUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	return cmdErr.Code == illegalOperation || strings.Contains(cmdErr.Message, "Transaction numbers")
}

func (r *CategoryRepository) findOne(ctx context.Context, filter bson.M) (*models.Category, error) {
	var category models.Category
	if err := r.collection.FindOne(ctx, filter).Decode(&category); err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

// compactRefs drops entries for subcategory ids with no matching document.
func compactRefs(refs []models.SubcategoryRef) []models.SubcategoryRef {
	out := make([]models.SubcategoryRef, 0, len(refs))
	for _, ref := range refs {
		if !ref.ID.IsZero() {
			out = append(out, ref)
		}
	}
	return out
}

// orderSubcategories returns subs in the order their ids appear in ids.
func orderSubcategories(subs []models.Subcategory, ids []primitive.ObjectID) []models.Subcategory {
	byID := make(map[primitive.ObjectID]models.Subcategory, len(subs))
	for _, s := range subs {
		byID[s.ID] = s
	}
	out := make([]models.Subcategory, 0, len(subs))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
