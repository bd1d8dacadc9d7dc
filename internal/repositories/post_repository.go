package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/commune-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Feed sort modes.
const (
	FeedSortNew      = "new"
	FeedSortTop      = "top"
	FeedSortTrending = "trending"
)

// FeedQuery describes one feed page request. Offset paging (Page x Limit) and
// keyset paging (Cursor) are two distinct modes: when Cursor is set it takes
// precedence and Page is ignored.
type FeedQuery struct {
	Sort    string
	Page    int
	Limit   int
	Cursor  string // hex ObjectID of the last seen post; selects keyset mode
	Search  string
	GroupID uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status string) error
	ListFeed(ctx context.Context, q FeedQuery) ([]models.Post, int64, error)
	GetPostsByGroupID(ctx context.Context, groupID uint, skip, limit int64) ([]models.Post, error)
	IncrementReactionCount(ctx context.Context, postID string, delta int) error
	SetReactionCount(ctx context.Context, postID string, count int) error
	IncrementCommentCount(ctx context.Context, postID string, delta int) error
	IncrementViewCount(ctx context.Context, postID string) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("post not found")
		}
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

// UpdateStatus sets a post's moderation status
func (r *MongoPostRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

// ListFeed retrieves one feed page plus the total matching approved posts.
// The total is computed without the cursor constraint so callers can derive
// hasMore from offset paging even when advancing by keyset.
func (r *MongoPostRepository) ListFeed(ctx context.Context, q FeedQuery) ([]models.Post, int64, error) {
	filter, err := feedFilter(q, false)
	if err != nil {
		return nil, 0, err
	}
	countFilter, _ := feedFilter(q, true)

	total, err := r.collection.CountDocuments(ctx, countFilter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().SetSort(feedSort(q.Sort)).SetLimit(int64(q.Limit))
	if q.Cursor == "" {
		findOptions.SetSkip(int64((q.Page - 1) * q.Limit))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// GetPostsByGroupID retrieves posts in a group from MongoDB, newest first
func (r *MongoPostRepository) GetPostsByGroupID(ctx context.Context, groupID uint, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"group_id": groupID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// IncrementReactionCount adjusts the reaction count of a post by delta
func (r *MongoPostRepository) IncrementReactionCount(ctx context.Context, postID string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"reaction_count": delta}})
	return err
}

// SetReactionCount overwrites the reaction count of a post, used when
// reconciling the counter against the reaction ledger
func (r *MongoPostRepository) SetReactionCount(ctx context.Context, postID string, count int) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"reaction_count": count}})
	return err
}

// IncrementCommentCount adjusts the comment count of a post by delta
func (r *MongoPostRepository) IncrementCommentCount(ctx context.Context, postID string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"comment_count": delta}})
	return err
}

// IncrementViewCount increments the view count of a post
func (r *MongoPostRepository) IncrementViewCount(ctx context.Context, postID string) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"view_count": 1}})
	return err
}

// feedFilter builds the Mongo filter for a feed query. forCount drops the
// cursor constraint so totals stay stable while a client pages by keyset.
func feedFilter(q FeedQuery, forCount bool) (bson.M, error) {
	filter := bson.M{"status": models.PostApproved}

	if q.GroupID != 0 {
		filter["group_id"] = q.GroupID
	}

	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
			bson.M{"author_name": pattern},
		}
	}

	if q.Cursor != "" && !forCount {
		cursorID, err := primitive.ObjectIDFromHex(q.Cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		filter["_id"] = bson.M{"$lt": cursorID}
	}

	return filter, nil
}

// feedSort maps a sort mode to a Mongo sort document. "top" leaves ties to
// the store; "trending" breaks them by recency.
func feedSort(sort string) bson.D {
	switch sort {
	case FeedSortTop:
		return bson.D{{Key: "reaction_count", Value: -1}}
	case FeedSortTrending:
		return bson.D{{Key: "reaction_count", Value: -1}, {Key: "created_at", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}
