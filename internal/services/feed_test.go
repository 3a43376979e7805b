package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/testkit"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFeedIncludesSelfAndFollowedOnly(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	now := time.Now()
	a := testkit.MustUser(t, h.store, "a")
	b := testkit.MustUser(t, h.store, "b")
	c := testkit.MustUser(t, h.store, "c")
	d := testkit.MustUser(t, h.store, "d")
	for _, target := range []*models.User{b, c} {
		if _, err := h.graph.ToggleFollow(ctx, a, target.ID); err != nil {
			t.Fatal(err)
		}
	}

	ra := testkit.MustRecipe(t, h.store, a, "A")
	rb := testkit.MustRecipe(t, h.store, b, "B")
	rc := testkit.MustRecipe(t, h.store, c, "C")
	rd := testkit.MustRecipe(t, h.store, d, "D")
	h.store.SetRecipeCreatedAt(ra.ID, now.Add(-3*time.Hour))
	h.store.SetRecipeCreatedAt(rb.ID, now.Add(-1*time.Hour))
	h.store.SetRecipeCreatedAt(rc.ID, now.Add(-2*time.Hour))
	h.store.SetRecipeCreatedAt(rd.ID, now)

	page, err := h.feed.Feed(ctx, a, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []primitive.ObjectID{rb.ID, rc.ID, ra.ID}
	if len(page.Items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(page.Items))
	}
	for i, id := range want {
		if page.Items[i].ID != id {
			t.Fatalf("item %d: got %s, want %s", i, page.Items[i].Title, id.Hex())
		}
	}
	if page.Pagination != (models.Pagination{Page: 1, Limit: 10, Total: 3, Pages: 1}) {
		t.Fatalf("unexpected pagination %+v", page.Pagination)
	}
}

func TestFeedSkipsDrafts(t *testing.T) {
	h := newHarness(t, false)
	a := testkit.MustUser(t, h.store, "a")
	testkit.MustRecipe(t, h.store, a, "Draft", testkit.Draft())

	page, err := h.feed.Feed(context.Background(), a, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 0 {
		t.Fatal("drafts are not in the feed")
	}
}

func TestFeedPagination(t *testing.T) {
	h := newHarness(t, false)
	a := testkit.MustUser(t, h.store, "a")
	for _, title := range []string{"1", "2", "3", "4", "5"} {
		testkit.MustRecipe(t, h.store, a, title)
	}

	page, err := h.feed.Feed(context.Background(), a, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("last page should hold one item, got %d", len(page.Items))
	}
	if page.Pagination.Total != 5 || page.Pagination.Pages != 3 {
		t.Fatalf("unexpected pagination %+v", page.Pagination)
	}

	far, err := h.feed.Feed(context.Background(), a, math.MaxInt, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(far.Items) != 0 || far.Pagination.Page != models.MaxPage || far.Pagination.Total != 5 {
		t.Fatalf("huge page should be capped and empty, got %d items %+v", len(far.Items), far.Pagination)
	}
}

func TestExploreUsesTrendingWindow(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	h.feed.WithClock(fixedClock(now))
	author := testkit.MustUser(t, h.store, "author")
	x := testkit.MustRecipe(t, h.store, author, "X")
	y := testkit.MustRecipe(t, h.store, author, "Y")
	z := testkit.MustRecipe(t, h.store, author, "Z")
	h.store.SetRecipeCreatedAt(x.ID, now.AddDate(0, 0, -10))
	h.store.SetRecipeCreatedAt(y.ID, now.AddDate(0, 0, -2))
	h.store.SetRecipeCreatedAt(z.ID, now.AddDate(0, 0, -1))

	for i := 0; i < 50; i++ {
		if _, err := h.store.AddLike(ctx, x.ID, primitive.NewObjectID()); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 5; i++ {
		if _, err := h.store.AddLike(ctx, y.ID, primitive.NewObjectID()); err != nil {
			t.Fatal(err)
		}
	}

	page, err := h.feed.Explore(ctx, 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected Y and Z, got %d items", len(page.Items))
	}
	if page.Items[0].ID != y.ID || page.Items[0].LikeCount != 5 {
		t.Fatalf("Y ranks first by likes, got %s", page.Items[0].Title)
	}
	for _, item := range page.Items {
		if item.ID == x.ID {
			t.Fatal("X is outside the window")
		}
	}
}

func TestExploreBreaksLikeTiesByViews(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	author := testkit.MustUser(t, h.store, "author")
	quiet := testkit.MustRecipe(t, h.store, author, "Quiet")
	viewed := testkit.MustRecipe(t, h.store, author, "Viewed")
	for i := 0; i < 3; i++ {
		if _, err := h.store.IncrementViewCount(ctx, viewed.ID); err != nil {
			t.Fatal(err)
		}
	}

	page, err := h.feed.Explore(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 2 || page.Items[0].ID != viewed.ID || page.Items[1].ID != quiet.ID {
		t.Fatal("equal likes should rank by views")
	}
}

func TestSearchFilters(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	author := testkit.MustUser(t, h.store, "author")
	curry := testkit.MustRecipe(t, h.store, author, "Chicken Curry",
		testkit.Cuisine("Indian"), testkit.Ingredients("chicken", "rice"), testkit.Options("Hard", "Non-Veg", "Dinner"))
	salad := testkit.MustRecipe(t, h.store, author, "Green Salad",
		testkit.Cuisine("Greek"), testkit.Tags("fresh"), testkit.Options("Easy", "Vegan", "Lunch"))
	testkit.MustRecipe(t, h.store, author, "Hidden Curry", testkit.Draft())

	tests := []struct {
		name   string
		params SearchParams
		want   []primitive.ObjectID
	}{
		{name: "text matches title", params: SearchParams{Query: "curry"}, want: []primitive.ObjectID{curry.ID}},
		{name: "text matches tag", params: SearchParams{Query: "FRESH"}, want: []primitive.ObjectID{salad.ID}},
		{name: "regex characters are literal", params: SearchParams{Query: "curry.*"}, want: nil},
		{name: "cuisine case insensitive", params: SearchParams{Cuisine: "indian"}, want: []primitive.ObjectID{curry.ID}},
		{name: "ingredient", params: SearchParams{Ingredient: "Rice"}, want: []primitive.ObjectID{curry.ID}},
		{name: "difficulty", params: SearchParams{Difficulty: "Easy"}, want: []primitive.ObjectID{salad.ID}},
		{name: "dietary type", params: SearchParams{DietaryType: "Non-Veg"}, want: []primitive.ObjectID{curry.ID}},
		{name: "category", params: SearchParams{Category: "Lunch"}, want: []primitive.ObjectID{salad.ID}},
		{name: "oldest first", params: SearchParams{Sort: "oldest"}, want: []primitive.ObjectID{curry.ID, salad.ID}},
		{name: "unknown sort is newest", params: SearchParams{Sort: "random"}, want: []primitive.ObjectID{salad.ID, curry.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := h.feed.Search(ctx, tt.params)
			if err != nil {
				t.Fatal(err)
			}
			if len(page.Items) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(page.Items), len(tt.want))
			}
			for i, id := range tt.want {
				if page.Items[i].ID != id {
					t.Fatalf("item %d is %s", i, page.Items[i].Title)
				}
			}
			if page.Pagination.Total != int64(len(tt.want)) {
				t.Fatalf("total %d, want %d", page.Pagination.Total, len(tt.want))
			}
		})
	}
}

func TestMyRecipesIncludeDrafts(t *testing.T) {
	h := newHarness(t, false)
	a := testkit.MustUser(t, h.store, "a")
	b := testkit.MustUser(t, h.store, "b")
	testkit.MustRecipe(t, h.store, a, "Public")
	testkit.MustRecipe(t, h.store, a, "Draft", testkit.Draft())
	testkit.MustRecipe(t, h.store, b, "Other")

	got, err := h.feed.MyRecipes(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Title != "Draft" {
		t.Fatalf("expected both own recipes newest first, got %d", len(got))
	}
}

func TestRecommendations(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	author := testkit.MustUser(t, h.store, "author")
	base := testkit.MustRecipe(t, h.store, author, "Base", testkit.Cuisine("Thai"), testkit.Options("Easy", "Vegan", "Lunch"))
	sameCuisine := testkit.MustRecipe(t, h.store, author, "Same", testkit.Cuisine("Thai"), testkit.Options("Hard", "Keto", "Dinner"))
	testkit.MustRecipe(t, h.store, author, "Unrelated", testkit.Cuisine("French"), testkit.Options("Hard", "Keto", "Dinner"))
	testkit.MustRecipe(t, h.store, author, "Draft", testkit.Cuisine("Thai"), testkit.Draft())

	got, err := h.feed.Recommendations(ctx, base.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != sameCuisine.ID {
		t.Fatalf("expected only Same, got %d", len(got))
	}

	_, err = h.feed.Recommendations(ctx, primitive.NewObjectID())
	assertKind(t, err, KindNotFound)
}
