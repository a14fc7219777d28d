package bookapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAccountRepository struct {
	collection *mongo.Collection
}

type dbAccount struct {
	ID         ID          `bson:"_id"`
	Username   string      `bson:"username"`
	Email      string      `bson:"email"`
	Password   string      `bson:"password"`
	CreatedAt  time.Time   `bson:"createdAt"`
	SavedBooks []SavedBook `bson:"savedBooks"`
}

func NewMongoAccountRepository(c *mongo.Collection) Repository {
	return &mongoAccountRepository{collection: c}
}

// EnsureAccountIndexes creates the unique indexes registration relies
// on. Called once at startup.
func EnsureAccountIndexes(ctx context.Context, c *mongo.Collection) error {
	_, err := c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("username_1")},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_1")},
	})
	return err
}

func (m *mongoAccountRepository) FindByID(id ID) (*Account, error) {
	return m.findAccountBy("_id", string(id))
}

func (m *mongoAccountRepository) FindByName(username string) (*Account, error) {
	return m.findAccountBy("username", username)
}

func (m *mongoAccountRepository) FindByEmail(email string) (*Account, error) {
	return m.findAccountBy("email", email)
}

func (m *mongoAccountRepository) findAccountBy(key string, val string) (*Account, error) {
	var dba dbAccount
	err := m.collection.FindOne(context.TODO(), bson.M{key: val}).Decode(&dba)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}

	acc := accountFromDBAccount(dba)
	return &acc, nil
}

func (m *mongoAccountRepository) Store(acc *Account) error {
	dba := dbAccountFromAccount(acc)
	if _, err := m.collection.InsertOne(context.TODO(), &dba); err != nil {
		return insertErr(err)
	}
	return nil
}

// AddBook inserts book into the account's savedBooks only when no
// entry with the same bookId exists yet. The guard lives in the filter
// so the whole update is one atomic operation: concurrent adds of the
// same book converge to a single stored entry, and the existing copy
// is never overwritten.
func (m *mongoAccountRepository) AddBook(id ID, book SavedBook) (*Account, error) {
	filter := bson.M{"_id": string(id), "savedBooks.bookId": bson.M{"$ne": book.BookID}}
	update := bson.M{"$push": bson.M{"savedBooks": book}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var dba dbAccount
	err := m.collection.FindOneAndUpdate(context.TODO(), filter, update, opts).Decode(&dba)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the book is already saved or the account is gone;
		// FindByID tells the two apart.
		return m.FindByID(id)
	}
	if err != nil {
		return nil, storeErr(err)
	}

	acc := accountFromDBAccount(dba)
	return &acc, nil
}

func (m *mongoAccountRepository) RemoveBook(id ID, bookID string) (*Account, error) {
	update := bson.M{"$pull": bson.M{"savedBooks": bson.M{"bookId": bookID}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var dba dbAccount
	err := m.collection.FindOneAndUpdate(context.TODO(), bson.M{"_id": string(id)}, update, opts).Decode(&dba)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}

	acc := accountFromDBAccount(dba)
	return &acc, nil
}

func (m *mongoAccountRepository) UpdatePassword(id ID, hash string) error {
	res, err := m.collection.UpdateOne(context.TODO(),
		bson.M{"_id": string(id)}, bson.M{"$set": bson.M{"password": hash}})
	if err != nil {
		return storeErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// insertErr maps duplicate-key write errors from the unique indexes
// onto the conflict sentinels; the index name says which field lost
// the race.
func insertErr(err error) error {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code != 11000 {
				continue
			}
			if strings.Contains(e.Message, "email_1") {
				return ErrExistingEmail
			}
			return ErrExistingUsername
		}
	}
	return storeErr(err)
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func dbAccountFromAccount(acc *Account) dbAccount {
	return dbAccount{acc.ID, acc.Username, acc.Email, acc.password, acc.CreatedAt, acc.SavedBooks}
}

func accountFromDBAccount(dba dbAccount) Account {
	return Account{dba.ID, dba.Username, dba.Email, dba.Password, dba.CreatedAt, dba.SavedBooks}
}
