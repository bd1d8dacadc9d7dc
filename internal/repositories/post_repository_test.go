package repositories

import (
	"testing"

	"github.com/commune-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFeedFilterDefaults(t *testing.T) {
	filter, err := feedFilter(FeedQuery{Sort: FeedSortNew, Page: 1, Limit: 10}, false)
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if filter["status"] != models.PostApproved {
		t.Fatalf("the feed must only ever see approved posts, got %v", filter["status"])
	}
	if _, ok := filter["group_id"]; ok {
		t.Fatal("no group constraint expected without a group filter")
	}
	if _, ok := filter["$or"]; ok {
		t.Fatal("no search constraint expected without a search term")
	}
}

func TestFeedFilterGroupAndSearch(t *testing.T) {
	filter, err := feedFilter(FeedQuery{Sort: FeedSortNew, GroupID: 7, Search: "c++ tips"}, false)
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if filter["group_id"] != uint(7) {
		t.Fatalf("expected group_id 7, got %v", filter["group_id"])
	}

	or, ok := filter["$or"].(bson.A)
	if !ok || len(or) != 3 {
		t.Fatalf("expected a 3-way $or over title, content and author_name, got %v", filter["$or"])
	}
	first, ok := or[0].(bson.M)
	if !ok {
		t.Fatalf("unexpected $or clause shape: %T", or[0])
	}
	pattern, ok := first["title"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected a regex title clause, got %T", first["title"])
	}
	if pattern.Options != "i" {
		t.Fatalf("search must be case-insensitive, got options %q", pattern.Options)
	}
	// Regex metacharacters in the term must be treated literally.
	if pattern.Pattern == "c++ tips" {
		t.Fatal("expected the search term to be regex-quoted")
	}
}

func TestFeedFilterCursor(t *testing.T) {
	cursorID := primitive.NewObjectID()

	filter, err := feedFilter(FeedQuery{Sort: FeedSortNew, Cursor: cursorID.Hex()}, false)
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	idClause, ok := filter["_id"].(bson.M)
	if !ok {
		t.Fatalf("expected a keyset _id clause, got %v", filter["_id"])
	}
	if idClause["$lt"] != cursorID {
		t.Fatalf("expected $lt %v, got %v", cursorID, idClause["$lt"])
	}

	// Totals are computed without the cursor so they stay stable while paging.
	countFilter, err := feedFilter(FeedQuery{Sort: FeedSortNew, Cursor: cursorID.Hex()}, true)
	if err != nil {
		t.Fatalf("count filter failed: %v", err)
	}
	if _, ok := countFilter["_id"]; ok {
		t.Fatal("the count filter must not carry the cursor constraint")
	}
}

func TestFeedFilterInvalidCursor(t *testing.T) {
	if _, err := feedFilter(FeedQuery{Sort: FeedSortNew, Cursor: "not-an-objectid"}, false); err == nil {
		t.Fatal("expected an error for a malformed cursor")
	}
}

func TestFeedSortModes(t *testing.T) {
	newSort := feedSort(FeedSortNew)
	if len(newSort) != 1 || newSort[0].Key != "created_at" || newSort[0].Value != -1 {
		t.Fatalf("unexpected sort for new: %v", newSort)
	}

	topSort := feedSort(FeedSortTop)
	if len(topSort) != 1 || topSort[0].Key != "reaction_count" {
		t.Fatalf("unexpected sort for top: %v", topSort)
	}

	trendingSort := feedSort(FeedSortTrending)
	if len(trendingSort) != 2 || trendingSort[0].Key != "reaction_count" || trendingSort[1].Key != "created_at" {
		t.Fatalf("trending must break reaction ties by recency, got %v", trendingSort)
	}
}
