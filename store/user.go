package store

import (
	"context"
	"time"

	"github.com/campuslib/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCount returns the number of documents in the users collection.
func (db *DB) UsersCount(ctx context.Context) (int64, error) {
	return db.Users().CountDocuments(ctx, bson.M{})
}

func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	user.CreatedAt = time.Now()
	res, err := db.Users().InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// RolesForUser returns the raw role values granted to a user, in no
// particular order.
func (db *DB) RolesForUser(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	cur, err := db.UserRoles().Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []models.UserRole
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	roles := make([]string, 0, len(rows))
	for _, r := range rows {
		roles = append(roles, r.Role)
	}
	return roles, nil
}

// GrantRole adds a role row for a user if not already present.
func (db *DB) GrantRole(ctx context.Context, userID primitive.ObjectID, role string) error {
	_, err := db.UserRoles().UpdateOne(ctx,
		bson.M{"userId": userID, "role": role},
		bson.M{"$setOnInsert": bson.M{"userId": userID, "role": role, "createdAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (db *DB) RevokeRole(ctx context.Context, userID primitive.ObjectID, role string) error {
	_, err := db.UserRoles().DeleteOne(ctx, bson.M{"userId": userID, "role": role})
	return err
}

func (db *DB) CreateProfile(ctx context.Context, p *models.Profile) (primitive.ObjectID, error) {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.MemberSince.IsZero() {
		p.MemberSince = now
	}
	res, err := db.Profiles().InsertOne(ctx, p)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) ProfileByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	var p models.Profile
	err := db.Profiles().FindOne(ctx, bson.M{"userId": userID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) UpdateProfile(ctx context.Context, userID primitive.ObjectID, fullName, phone, address *string) (*models.Profile, error) {
	set := bson.M{"updatedAt": time.Now()}
	if fullName != nil {
		set["fullName"] = *fullName
	}
	if phone != nil {
		set["phone"] = *phone
	}
	if address != nil {
		set["address"] = *address
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Profile
	err := db.Profiles().FindOneAndUpdate(ctx, bson.M{"userId": userID}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	cur, err := db.Profiles().Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"memberSince": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var profiles []models.Profile
	if err := cur.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}
