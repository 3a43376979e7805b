package services

import (
	"context"
	"time"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	cuisineBuckets   = 10
	topRecipesLimit  = 5
	contributorLimit = 8
	activityMonths   = 12
)

// Aggregator computes read-only rollups over published recipes. Nothing is cached;
// every call recomputes from the current store state.
type Aggregator struct {
	users     repositories.UserRepository
	recipes   repositories.RecipeRepository
	analytics repositories.AnalyticsRepository
	populate  populator
	now       func() time.Time
}

// NewAggregator creates a new Aggregator
func NewAggregator(users repositories.UserRepository, recipes repositories.RecipeRepository, analytics repositories.AnalyticsRepository) *Aggregator {
	return &Aggregator{
		users:     users,
		recipes:   recipes,
		analytics: analytics,
		populate:  populator{users: users},
		now:       time.Now,
	}
}

// WithClock replaces the clock used for the monthly window
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Analytics returns the full rollup
func (a *Aggregator) Analytics(ctx context.Context) (*models.Analytics, error) {
	var out models.Analytics
	var totals models.EngagementTotals
	since := monthStart(a.now(), activityMonths-1)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.ByCuisine, err = a.analytics.CountByField(ctx, "cuisine", cuisineBuckets)
		return err
	})
	g.Go(func() (err error) {
		out.ByDifficulty, err = a.analytics.CountByField(ctx, "difficulty", 0)
		return err
	})
	g.Go(func() (err error) {
		out.ByDietaryType, err = a.analytics.CountByField(ctx, "dietaryType", 0)
		return err
	})
	g.Go(func() (err error) {
		out.ByCategory, err = a.analytics.CountByField(ctx, "category", 0)
		return err
	})
	g.Go(func() error {
		activity, err := a.analytics.MonthlyActivity(ctx, since)
		if err != nil {
			return err
		}
		out.MonthlyActivity = fillMonths(since, activityMonths, activity)
		return nil
	})
	g.Go(func() (err error) {
		out.TopRecipes, err = a.topRecipes(ctx, true)
		return err
	})
	g.Go(func() (err error) {
		out.TopContributors, err = a.analytics.TopContributors(ctx, contributorLimit)
		return err
	})
	g.Go(func() (err error) {
		out.Summary.TotalRecipes, err = a.recipes.CountRecipes(ctx, repositories.RecipeQuery{PublishedOnly: true})
		return err
	})
	g.Go(func() (err error) {
		out.Summary.TotalUsers, err = a.users.CountUsers(ctx, repositories.UserFilter{})
		return err
	})
	g.Go(func() (err error) {
		totals, err = a.analytics.EngagementTotals(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Summary.TotalLikes = totals.TotalLikes
	out.Summary.TotalComments = totals.TotalComments
	out.Summary.TotalViews = totals.TotalViews
	return &out, nil
}

// topRecipes ranks recipes by like count and resolves their authors
func (a *Aggregator) topRecipes(ctx context.Context, publishedOnly bool) ([]models.TopRecipe, error) {
	top, err := a.analytics.TopRecipes(ctx, topRecipesLimit, publishedOnly)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(top))
	for _, r := range top {
		ids = append(ids, r.AuthorID)
	}
	authors, err := a.populate.compactUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range top {
		top[i].Author = authors[top[i].AuthorID]
	}
	return top, nil
}

// monthStart returns the first instant of the month that is back months before t
func monthStart(t time.Time, back int) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()-time.Month(back), 1, 0, 0, 0, 0, time.UTC)
}

// fillMonths returns one entry per month from since, using zero counts for months without recipes
func fillMonths(since time.Time, months int, activity []models.MonthlyActivity) []models.MonthlyActivity {
	byKey := make(map[models.MonthKey]models.MonthlyActivity, len(activity))
	for _, m := range activity {
		byKey[m.ID] = m
	}
	out := make([]models.MonthlyActivity, 0, months)
	for i := 0; i < months; i++ {
		t := since.AddDate(0, i, 0)
		key := models.MonthKey{Year: t.Year(), Month: int(t.Month())}
		if m, ok := byKey[key]; ok {
			out = append(out, m)
			continue
		}
		out = append(out, models.MonthlyActivity{ID: key})
	}
	return out
}
