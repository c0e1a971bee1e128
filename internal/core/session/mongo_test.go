package session

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("load hit", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(), // createIndexes
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: "abc"},
				{Key: "data", Value: bson.D{{Key: "userId", Value: "u1"}, {Key: "role", Value: "librarian"}}},
				{Key: "expiresAt", Value: time.Now().Add(time.Hour)},
			}),
		)
		s, err := NewMongo(context.Background(), mt.Coll)
		if err != nil {
			mt.Fatal(err)
		}
		d, err := s.Load(context.Background(), "abc")
		if err != nil || d == nil {
			mt.Fatalf("load: %v %v", d, err)
		}
		if d.UserID != "u1" || d.Role != "librarian" {
			mt.Fatalf("data = %+v", d)
		}
	})

	mt.Run("load miss", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)
		s, err := NewMongo(context.Background(), mt.Coll)
		if err != nil {
			mt.Fatal(err)
		}
		d, err := s.Load(context.Background(), "nope")
		if d != nil || err != nil {
			mt.Fatalf("want (nil, nil), got %v %v", d, err)
		}
	})

	mt.Run("save and destroy", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)
		s, err := NewMongo(context.Background(), mt.Coll)
		if err != nil {
			mt.Fatal(err)
		}
		if err := s.Save(context.Background(), "abc", &Data{UserID: "u1"}, time.Hour); err != nil {
			mt.Fatalf("save: %v", err)
		}
		if err := s.Destroy(context.Background(), "abc"); err != nil {
			mt.Fatalf("destroy: %v", err)
		}
	})

	mt.Run("ping", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		s, err := NewMongo(context.Background(), mt.Coll)
		if err != nil {
			mt.Fatal(err)
		}
		if err := s.Ping(context.Background()); err != nil {
			mt.Fatalf("ping: %v", err)
		}
	})

	mt.Run("index failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 85, Name: "IndexOptionsConflict", Message: "conflict",
		}))
		if _, err := NewMongo(context.Background(), mt.Coll); err == nil {
			mt.Fatal("want error")
		}
	})
}
