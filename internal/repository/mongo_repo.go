package repository

import (
	"context"
	"fmt"
	"time"

	"go-pos-inventory/internal/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureMongoIndexes creates the unique and lookup indexes the repositories rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		ProductsCollection: {
			{Keys: bson.D{{Key: "name_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		TransactionsCollection: {
			{Keys: bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "product_id", Value: 1}}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("repository: indexes on %s: %w", coll, err)
		}
	}
	return nil
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}})

// ---- products ----

type mongoProductRepo struct {
	coll *mongo.Collection
}

func NewMongoProductRepo(db *mongo.Database) ProductRepository {
	return &mongoProductRepo{coll: db.Collection(ProductsCollection)}
}

func (r *mongoProductRepo) Create(ctx context.Context, product *model.Product) error {
	product.EnsureID()
	product.Touch(time.Now().UTC())
	doc, err := newProductDocument(product)
	if err != nil {
		return err
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return err
}

func (r *mongoProductRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name_key", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	products := make([]model.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.toModel()
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

func (r *mongoProductRepo) findOne(ctx context.Context, filter bson.D) (*model.Product, error) {
	var doc productDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel()
}

func (r *mongoProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (r *mongoProductRepo) FindByName(ctx context.Context, name string) (*model.Product, error) {
	return r.findOne(ctx, bson.D{{Key: "name_key", Value: nameKey(name)}})
}

func (r *mongoProductRepo) Update(ctx context.Context, product *model.Product) error {
	product.UpdatedAt = time.Now().UTC()
	doc, err := newProductDocument(product)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: doc.Name},
		{Key: "name_key", Value: doc.NameKey},
		{Key: "price", Value: doc.Price},
		{Key: "capital", Value: doc.Capital},
		{Key: "stock", Value: doc.Stock},
		{Key: "updated_at", Value: doc.UpdatedAt},
	}}})
	if err != nil {
		return err
	}
	// Matched, not modified: rewriting identical values is still a success.
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- transactions ----

type mongoTransactionRepo struct {
	coll *mongo.Collection
}

func NewMongoTransactionRepo(db *mongo.Database) TransactionRepository {
	return &mongoTransactionRepo{coll: db.Collection(TransactionsCollection)}
}

func (r *mongoTransactionRepo) Create(ctx context.Context, transaction *model.Transaction) error {
	transaction.EnsureID()
	transaction.Touch(time.Now().UTC())
	transaction.Date = model.BusinessDate(transaction.Date)
	doc, err := newTransactionDocument(transaction)
	if err != nil {
		return err
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return err
}

func (r *mongoTransactionRepo) find(ctx context.Context, filter bson.D) ([]model.Transaction, error) {
	cur, err := r.coll.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	var docs []transactionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Transaction, 0, len(docs))
	for _, d := range docs {
		t, err := d.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *mongoTransactionRepo) FindAll(ctx context.Context) ([]model.Transaction, error) {
	return r.find(ctx, bson.D{})
}

func (r *mongoTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var doc transactionDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel()
}

func (r *mongoTransactionRepo) FindByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	return r.find(ctx, bson.D{{Key: "date", Value: bson.D{
		{Key: "$gte", Value: model.BusinessDate(start)},
		{Key: "$lte", Value: model.BusinessDate(end)},
	}}})
}

func (r *mongoTransactionRepo) Update(ctx context.Context, transaction *model.Transaction) error {
	transaction.UpdatedAt = time.Now().UTC()
	doc, err := newTransactionDocument(transaction)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "product_id", Value: doc.ProductID},
		{Key: "product_name", Value: doc.ProductName},
		{Key: "quantity", Value: doc.Quantity},
		{Key: "total", Value: doc.Total},
		{Key: "profit", Value: doc.Profit},
		{Key: "date", Value: doc.Date},
		{Key: "updated_at", Value: doc.UpdatedAt},
	}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	transaction.Date = doc.Date
	return nil
}

func (r *mongoTransactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- users ----

type mongoUserRepo struct {
	coll *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) UserRepository {
	return &mongoUserRepo{coll: db.Collection(UsersCollection)}
}

func (r *mongoUserRepo) findOne(ctx context.Context, filter bson.D) (*model.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel()
}

func (r *mongoUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *mongoUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (r *mongoUserRepo) Create(ctx context.Context, user *model.User) error {
	user.EnsureID()
	user.Touch(time.Now().UTC())
	_, err := r.coll.InsertOne(ctx, newUserDocument(user))
	return err
}

func (r *mongoUserRepo) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: user.ID.String()}}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "password", Value: user.Password},
		{Key: "full_name", Value: user.FullName},
		{Key: "role", Value: user.Role},
		{Key: "updated_at", Value: user.UpdatedAt},
	}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepo) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}
