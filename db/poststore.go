package db

import (
	"context"
	"errors"

	"mywall/models"
	"mywall/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrPostNotFound = errors.New("post not found")

// PostStore is the Mongo-backed post record store. The store assigns post
// identifiers on insert.
type PostStore struct {
	coll *mongo.Collection
}

func NewPostStore() *PostStore {
	return &PostStore{coll: PostsCollection}
}

func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	if post.PostID == "" {
		post.PostID = "p" + utils.GenerateRandomString(12)
	}
	_, err := s.coll.InsertOne(ctx, post)
	return err
}

func (s *PostStore) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	err := s.coll.FindOne(ctx, bson.M{"postid": postID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	post.Normalize()
	return &post, nil
}

// ListByOwner returns the owner's posts, newest first. Ties on createdAt keep
// store order.
func (s *PostStore) ListByOwner(ctx context.Context, userID string) ([]models.Post, error) {
	sortOrder := bson.D{{Key: "createdAt", Value: -1}}
	cursor, err := s.coll.Find(ctx, bson.M{"userid": userID}, options.Find().SetSort(sortOrder))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	for cursor.Next(ctx) {
		var post models.Post
		if err := cursor.Decode(&post); err != nil {
			return nil, err
		}
		post.Normalize()
		posts = append(posts, post)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		posts = []models.Post{}
	}
	return posts, nil
}

func (s *PostStore) Delete(ctx context.Context, postID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"postid": postID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}
