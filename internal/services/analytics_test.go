package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/testkit"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAnalyticsRollup(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	h.aggregator.WithClock(fixedClock(now))

	prolific := testkit.MustUser(t, h.store, "prolific")
	casual := testkit.MustUser(t, h.store, "casual")
	fan := testkit.MustUser(t, h.store, "fan")

	r1 := testkit.MustRecipe(t, h.store, prolific, "R1", testkit.Cuisine("Italian"), testkit.Options("Easy", "Veg", "Dinner"))
	r2 := testkit.MustRecipe(t, h.store, prolific, "R2", testkit.Cuisine("Italian"), testkit.Options("Hard", "Vegan", "Lunch"))
	r3 := testkit.MustRecipe(t, h.store, casual, "R3", testkit.Cuisine("Thai"), testkit.Options("Easy", "Veg", "Dinner"))
	old := testkit.MustRecipe(t, h.store, casual, "Old", testkit.Cuisine("Thai"))
	testkit.MustRecipe(t, h.store, casual, "Draft", testkit.Cuisine("Hidden"), testkit.Draft())

	h.store.SetRecipeCreatedAt(r1.ID, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	h.store.SetRecipeCreatedAt(r2.ID, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	h.store.SetRecipeCreatedAt(r3.ID, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	h.store.SetRecipeCreatedAt(old.ID, time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC))

	if _, err := h.engagement.ToggleLike(ctx, fan, r3.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := h.engagement.ToggleLike(ctx, prolific, r3.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := h.engagement.ToggleLike(ctx, fan, r1.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := h.engagement.AddComment(ctx, fan, r1.ID, "great"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.recipes.Get(ctx, r2.ID); err != nil {
		t.Fatal(err)
	}

	got, err := h.aggregator.Analytics(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(got.ByCuisine) != 2 || got.ByCuisine[0] != (models.Bucket{ID: "Italian", Count: 2}) {
		t.Fatalf("cuisine buckets %+v", got.ByCuisine)
	}
	for _, b := range got.ByCuisine {
		if b.ID == "Hidden" {
			t.Fatal("drafts are excluded")
		}
	}

	if len(got.MonthlyActivity) != activityMonths {
		t.Fatalf("expected %d months, got %d", activityMonths, len(got.MonthlyActivity))
	}
	first, last := got.MonthlyActivity[0], got.MonthlyActivity[activityMonths-1]
	if first.ID != (models.MonthKey{Year: 2025, Month: 4}) || first.Recipes != 1 || first.TotalLikes != 2 {
		t.Fatalf("first month %+v", first)
	}
	if last.ID != (models.MonthKey{Year: 2026, Month: 3}) || last.Recipes != 1 || last.TotalLikes != 1 || last.TotalComments != 1 {
		t.Fatalf("last month %+v", last)
	}
	if feb := got.MonthlyActivity[10]; feb.ID != (models.MonthKey{Year: 2026, Month: 2}) || feb.Recipes != 0 {
		t.Fatalf("empty month should be zero filled: %+v", feb)
	}

	if len(got.TopRecipes) == 0 || got.TopRecipes[0].ID != r3.ID || got.TopRecipes[0].LikeCount != 2 {
		t.Fatalf("top recipe should be R3, got %+v", got.TopRecipes)
	}
	if got.TopRecipes[0].Author == nil || got.TopRecipes[0].Author.Username != "casual" {
		t.Fatal("top recipe author should be populated")
	}

	if len(got.TopContributors) != 2 {
		t.Fatalf("contributors %+v", got.TopContributors)
	}
	// equal published counts rank by summed likes; the draft does not count
	if got.TopContributors[0].Username != "casual" || got.TopContributors[0].Recipes != 2 || got.TopContributors[0].TotalLikes != 2 {
		t.Fatalf("top contributor %+v", got.TopContributors[0])
	}
	if got.TopContributors[1].Username != "prolific" || got.TopContributors[1].TotalLikes != 1 {
		t.Fatalf("second contributor %+v", got.TopContributors[1])
	}

	want := models.AnalyticsSummary{TotalRecipes: 4, TotalUsers: 3, TotalLikes: 3, TotalComments: 1, TotalViews: 1}
	if got.Summary != want {
		t.Fatalf("summary %+v, want %+v", got.Summary, want)
	}
}

func TestTopContributorsDropDeletedAuthors(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	gone := testkit.MustUser(t, h.store, "gone")
	testkit.MustRecipe(t, h.store, gone, "Orphan")
	if err := h.store.DeleteUser(ctx, gone.ID); err != nil {
		t.Fatal(err)
	}

	got, err := h.aggregator.Analytics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.TopContributors) != 0 {
		t.Fatal("authors without a user document are dropped")
	}
	if got.TopRecipes[0].Author != nil {
		t.Fatal("missing author renders nil")
	}
}

func TestMonthStart(t *testing.T) {
	tests := []struct {
		now  time.Time
		back int
		want time.Time
	}{
		{time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC), 11, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC), 0, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 1, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := monthStart(tt.now, tt.back); !got.Equal(tt.want) {
			t.Errorf("monthStart(%v, %d) = %v, want %v", tt.now, tt.back, got, tt.want)
		}
	}
}

func TestFillMonthsKeepsCounts(t *testing.T) {
	since := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	activity := []models.MonthlyActivity{{ID: models.MonthKey{Year: 2026, Month: 1}, Recipes: 4, TotalLikes: 9}}

	got := fillMonths(since, 3, activity)
	wantKeys := []models.MonthKey{{Year: 2025, Month: 11}, {Year: 2025, Month: 12}, {Year: 2026, Month: 1}}
	for i, k := range wantKeys {
		if got[i].ID != k {
			t.Fatalf("month %d is %+v", i, got[i].ID)
		}
	}
	if got[2].Recipes != 4 || got[2].TotalLikes != 9 || got[0].Recipes != 0 {
		t.Fatalf("unexpected fill %+v", got)
	}
}

func TestAdminStats(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	now := time.Now()
	h.admin.WithClock(fixedClock(now))
	admin := testkit.MustAdmin(t, h.store, "admin")
	veteran := testkit.MustUser(t, h.store, "veteran")
	h.store.SetUserCreatedAt(veteran.ID, now.AddDate(0, -1, 0))
	fresh := testkit.MustRecipe(t, h.store, admin, "Fresh")
	draft := testkit.MustRecipe(t, h.store, veteran, "Draft", testkit.Draft())
	h.store.SetRecipeCreatedAt(draft.ID, now.AddDate(0, 0, -30))
	if _, err := h.store.AddLike(ctx, draft.ID, primitive.NewObjectID()); err != nil {
		t.Fatal(err)
	}

	stats, err := h.admin.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := models.AdminStats{TotalUsers: 2, TotalRecipes: 2, TotalAdmins: 1, NewUsers: 1, NewRecipes: 1}
	if stats.TotalUsers != want.TotalUsers || stats.TotalRecipes != want.TotalRecipes || stats.TotalAdmins != want.TotalAdmins ||
		stats.NewUsers != want.NewUsers || stats.NewRecipes != want.NewRecipes {
		t.Fatalf("stats %+v", stats)
	}
	if len(stats.TopRecipes) != 2 || stats.TopRecipes[0].ID != draft.ID || stats.TopRecipes[1].ID != fresh.ID {
		t.Fatal("admin popular recipes include drafts")
	}
}
