package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func updateSections(mt *mtest.T) (q bson.Raw, u bson.Raw) {
	mt.Helper()
	evt := mt.GetStartedEvent()
	assert.Equal(mt, "update", evt.CommandName)
	updateDoc := evt.Command.Lookup("updates").Array().Index(0).Value().Document()
	return updateDoc.Lookup("q").Document(), updateDoc.Lookup("u").Document()
}

func TestAddJoinRequestGuardsAgainstMembersAndPending(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("guard predicate", func(mt *mtest.T) {
		repo := &MongoGroupRepository{collection: mt.Coll}
		groupID := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		assert.NoError(mt, repo.AddJoinRequest(context.Background(), groupID, 7))

		// The check-and-append is one update: the filter itself excludes
		// members and already-pending users.
		q, u := updateSections(mt)
		assert.EqualValues(mt, 7, q.Lookup("members", "$ne").AsInt64())
		assert.EqualValues(mt, 7, q.Lookup("join_requests.user_id", "$ne").AsInt64())
		assert.EqualValues(mt, 7, u.Lookup("$push", "join_requests", "user_id").AsInt64())
	})
}

func TestAddJoinRequestConflictWhenAlreadyMemberOrPending(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate request", func(mt *mtest.T) {
		repo := &MongoGroupRepository{collection: mt.Coll}
		groupID := primitive.NewObjectID()

		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			// Guard predicate matched nothing.
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			// The group exists, so the miss means member-or-pending.
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: groupID},
				{Key: "name", Value: "chess club"},
			}),
		)

		err := repo.AddJoinRequest(context.Background(), groupID, 7)
		assert.ErrorIs(mt, err, ErrConflict)
	})
}

func TestAddJoinRequestMissingGroup(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing group", func(mt *mtest.T) {
		repo := &MongoGroupRepository{collection: mt.Coll}

		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		err := repo.AddJoinRequest(context.Background(), primitive.NewObjectID(), 7)
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestAddMemberIncrementsCountExactlyOnce(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("add then replay", func(mt *mtest.T) {
		repo := &MongoGroupRepository{collection: mt.Coll}
		groupID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		added, err := repo.AddMember(context.Background(), groupID, 7)
		assert.NoError(mt, err)
		assert.True(mt, added)

		// The $inc rides the same guarded update as the $addToSet, so a
		// matched document moves the counter exactly once.
		q, u := updateSections(mt)
		assert.EqualValues(mt, 7, q.Lookup("members", "$ne").AsInt64())
		assert.EqualValues(mt, 7, u.Lookup("$addToSet", "members").AsInt64())
		assert.EqualValues(mt, 1, u.Lookup("$inc", "stats.member_count").AsInt64())

		// Replay: the guard matches nothing, so nothing is added and the
		// counter does not move again.
		added, err = repo.AddMember(context.Background(), groupID, 7)
		assert.NoError(mt, err)
		assert.False(mt, added)

		q, u = updateSections(mt)
		assert.EqualValues(mt, 7, q.Lookup("members", "$ne").AsInt64())
		assert.EqualValues(mt, 1, u.Lookup("$inc", "stats.member_count").AsInt64())
	})
}

func TestRemoveMemberRequiresMembership(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("non-member", func(mt *mtest.T) {
		repo := &MongoGroupRepository{collection: mt.Coll}
		groupID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		err := repo.RemoveMember(context.Background(), groupID, 7)
		assert.ErrorIs(mt, err, ErrNotFound)

		// -1 only ever applies to a document that listed the user as a member.
		q, u := updateSections(mt)
		assert.EqualValues(mt, 7, q.Lookup("members").AsInt64())
		assert.EqualValues(mt, -1, u.Lookup("$inc", "stats.member_count").AsInt64())
	})
}
