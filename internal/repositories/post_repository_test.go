package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestAddCommentRefPushesAndIncrementsInOneUpdate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("single atomic update", func(mt *mtest.T) {
		repo := &MongoPostRepository{collection: mt.Coll}
		postID := primitive.NewObjectID()
		commentID := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		assert.NoError(mt, repo.AddCommentRef(context.Background(), postID, commentID))

		// The id append and the counter bump travel in the same update, so
		// concurrent commenters each move the counter by exactly one.
		_, u := updateSections(mt)
		pushed, ok := u.Lookup("$push", "comment_ids").ObjectIDOK()
		assert.True(mt, ok)
		assert.Equal(mt, commentID, pushed)
		assert.EqualValues(mt, 1, u.Lookup("$inc", "comments_count").AsInt64())
	})
}

func TestAddCommentRefMissingPost(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing post", func(mt *mtest.T) {
		repo := &MongoPostRepository{collection: mt.Coll}

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		err := repo.AddCommentRef(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestRemoveCommentRefPullsAndDecrementsInOneUpdate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("single atomic update", func(mt *mtest.T) {
		repo := &MongoPostRepository{collection: mt.Coll}
		postID := primitive.NewObjectID()
		commentID := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		assert.NoError(mt, repo.RemoveCommentRef(context.Background(), postID, commentID))

		_, u := updateSections(mt)
		pulled, ok := u.Lookup("$pull", "comment_ids").ObjectIDOK()
		assert.True(mt, ok)
		assert.Equal(mt, commentID, pulled)
		assert.EqualValues(mt, -1, u.Lookup("$inc", "comments_count").AsInt64())
	})
}
