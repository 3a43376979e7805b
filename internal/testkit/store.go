// Package testkit holds in-memory stores and recorders for service and handler tests.
package testkit

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Op identifies a store call for failure injection
type Op struct {
	Name  string
	ID    primitive.ObjectID
	Field repositories.UserField
}

// Store is an in-memory document store. It implements UserRepository, RecipeRepository,
// AnalyticsRepository and NotificationRepository with the same observable semantics as the
// Mongo repositories.
type Store struct {
	mu            sync.Mutex
	users         map[primitive.ObjectID]models.User
	recipes       map[primitive.ObjectID]models.Recipe
	notifications []models.Notification

	// Now stamps createdAt on inserts
	Now func() time.Time
	// FailOn is consulted before every mutation; a non-nil result fails the call without writing
	FailOn func(op Op) error
}

var (
	_ repositories.UserRepository         = (*Store)(nil)
	_ repositories.RecipeRepository       = (*Store)(nil)
	_ repositories.AnalyticsRepository    = (*Store)(nil)
	_ repositories.NotificationRepository = (*Store)(nil)
)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:   map[primitive.ObjectID]models.User{},
		recipes: map[primitive.ObjectID]models.Recipe{},
		Now:     time.Now,
	}
}

func (s *Store) fail(op Op) error {
	if s.FailOn == nil {
		return nil
	}
	return s.FailOn(op)
}

// --- users ---

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(Op{Name: "CreateUser"}); err != nil {
		return err
	}
	for _, u := range s.users {
		if u.Username == user.Username ||
			(user.Email != "" && u.Email == user.Email) ||
			(user.FirebaseUID != "" && u.FirebaseUID == user.FirebaseUID) {
			return repositories.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = s.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.Followers = nonNil(user.Followers)
	user.Following = nonNil(user.Following)
	user.SavedRecipes = nonNil(user.SavedRecipes)
	s.users[user.ID] = cloneUser(*user)
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Username == username })
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return email != "" && u.Email == email })
}

func (s *Store) GetUserByFirebaseUID(_ context.Context, firebaseUID string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return firebaseUID != "" && u.FirebaseUID == firebaseUID })
}

func (s *Store) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, u := range s.sortedUsers() {
		if slices.Contains(ids, u.ID) {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (s *Store) UpdateProfile(_ context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	return s.updateUser(Op{Name: "UpdateProfile", ID: id}, func(u *models.User) {
		setString(&u.Name, update.Name)
		setString(&u.Bio, update.Bio)
		setString(&u.ProfileImage, update.ProfileImage)
		setString(&u.CoverImage, update.CoverImage)
		setString(&u.Website, update.Website)
		setString(&u.Location, update.Location)
		if update.IsPrivate != nil {
			u.IsPrivate = *update.IsPrivate
		}
	})
}

func (s *Store) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	_, err := s.updateUser(Op{Name: "SetPassword", ID: id}, func(u *models.User) { u.Password = hash })
	return err
}

func (s *Store) SetRole(_ context.Context, id primitive.ObjectID, role models.Role) (*models.User, error) {
	return s.updateUser(Op{Name: "SetRole", ID: id}, func(u *models.User) { u.Role = role })
}

func (s *Store) SetVerified(_ context.Context, id primitive.ObjectID, verified bool) (*models.User, error) {
	return s.updateUser(Op{Name: "SetVerified", ID: id}, func(u *models.User) { u.IsVerified = verified })
}

func (s *Store) LinkFirebaseUID(_ context.Context, id primitive.ObjectID, firebaseUID string) error {
	linked := false
	_, err := s.updateUser(Op{Name: "LinkFirebaseUID", ID: id}, func(u *models.User) {
		if u.FirebaseUID != "" {
			linked = true
			return
		}
		u.FirebaseUID = firebaseUID
	})
	if err == nil && linked {
		return repositories.ErrDuplicate
	}
	return err
}

func (s *Store) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(Op{Name: "DeleteUser", ID: id}); err != nil {
		return err
	}
	if _, ok := s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) ListUsers(_ context.Context, skip, limit int64) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sortedUsers()
	slices.Reverse(all)
	return page(cloneUsers(all), skip, limit), nil
}

func (s *Store) SearchUsers(_ context.Context, query string, limit int64) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	out := []models.User{}
	for _, u := range s.sortedUsers() {
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.Name), q) {
			out = append(out, cloneUser(u))
		}
	}
	return page(out, 0, limit), nil
}

func (s *Store) SuggestUsers(_ context.Context, exclude []primitive.ObjectID, limit int64) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, u := range s.sortedUsers() {
		if !slices.Contains(exclude, u.ID) {
			out = append(out, cloneUser(u))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Followers) != len(out[j].Followers) {
			return len(out[i].Followers) > len(out[j].Followers)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, 0, limit), nil
}

func (s *Store) CountUsers(_ context.Context, filter repositories.UserFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if !filter.Since.IsZero() && u.CreatedAt.Before(filter.Since) {
			continue
		}
		n++
	}
	return n, nil
}

func (s *Store) AddToSet(_ context.Context, id primitive.ObjectID, field repositories.UserField, value primitive.ObjectID) (*models.User, error) {
	return s.updateUser(Op{Name: "AddToSet", ID: id, Field: field}, func(u *models.User) {
		set := userSet(u, field)
		if !slices.Contains(*set, value) {
			*set = append(*set, value)
		}
	})
}

func (s *Store) Pull(_ context.Context, id primitive.ObjectID, field repositories.UserField, value primitive.ObjectID) (*models.User, error) {
	return s.updateUser(Op{Name: "Pull", ID: id, Field: field}, func(u *models.User) {
		set := userSet(u, field)
		*set = without(*set, value)
	})
}

func (s *Store) PullFromAll(_ context.Context, field repositories.UserField, value primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(Op{Name: "PullFromAll", ID: value, Field: field}); err != nil {
		return 0, err
	}
	var n int64
	for id, u := range s.users {
		set := userSet(&u, field)
		if slices.Contains(*set, value) {
			*set = without(*set, value)
			s.users[id] = u
			n++
		}
	}
	return n, nil
}

func (s *Store) findUser(match func(models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) updateUser(op Op, apply func(*models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(op); err != nil {
		return nil, err
	}
	u, ok := s.users[op.ID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u = cloneUser(u)
	apply(&u)
	u.UpdatedAt = s.Now()
	s.users[op.ID] = u
	out := cloneUser(u)
	return &out, nil
}

// sortedUsers returns users oldest first, ties broken by id
func (s *Store) sortedUsers() []models.User {
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out
}

// --- recipes ---

func (s *Store) CreateRecipe(_ context.Context, recipe *models.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(Op{Name: "CreateRecipe"}); err != nil {
		return err
	}
	recipe.ID = primitive.NewObjectID()
	recipe.CreatedAt = s.Now()
	recipe.UpdatedAt = recipe.CreatedAt
	recipe.CookingTime.Total = recipe.CookingTime.Prep + recipe.CookingTime.Cook
	recipe.Likes = nonNil(recipe.Likes)
	if recipe.Comments == nil {
		recipe.Comments = []models.Comment{}
	}
	if recipe.Images == nil {
		recipe.Images = []string{}
	}
	if recipe.Tags == nil {
		recipe.Tags = []string{}
	}
	s.recipes[recipe.ID] = cloneRecipe(*recipe)
	return nil
}

func (s *Store) GetRecipeByID(_ context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := cloneRecipe(r)
	return &out, nil
}

func (s *Store) GetRecipesByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Recipe{}
	for _, r := range s.sortedRecipes() {
		if slices.Contains(ids, r.ID) {
			out = append(out, cloneRecipe(r))
		}
	}
	return out, nil
}

func (s *Store) UpdateRecipe(_ context.Context, id primitive.ObjectID, update models.RecipeUpdate) (*models.Recipe, error) {
	return s.updateRecipe(Op{Name: "UpdateRecipe", ID: id}, func(r *models.Recipe) {
		setString(&r.Title, update.Title)
		setString(&r.Description, update.Description)
		setString(&r.Image, update.Image)
		if update.Images != nil {
			r.Images = update.Images
		}
		if update.Ingredients != nil {
			r.Ingredients = update.Ingredients
		}
		if update.Steps != nil {
			r.Steps = update.Steps
		}
		if update.Tags != nil {
			r.Tags = update.Tags
		}
		if update.CookingTime != nil {
			r.CookingTime = *update.CookingTime
			r.CookingTime.Total = r.CookingTime.Prep + r.CookingTime.Cook
		}
		if update.Servings != nil {
			r.Servings = *update.Servings
		}
		setString(&r.Difficulty, update.Difficulty)
		setString(&r.Cuisine, update.Cuisine)
		setString(&r.DietaryType, update.DietaryType)
		setString(&r.Category, update.Category)
		if update.Calories != nil {
			r.Calories = *update.Calories
		}
		if update.Nutrition != nil {
			r.Nutrition = *update.Nutrition
		}
		setString(&r.VideoURL, update.VideoURL)
		if update.IsPublished != nil {
			r.IsPublished = *update.IsPublished
		}
	})
}

func (s *Store) DeleteRecipe(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(Op{Name: "DeleteRecipe", ID: id}); err != nil {
		return err
	}
	if _, ok := s.recipes[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.recipes, id)
	return nil
}

func (s *Store) DeleteRecipesByAuthor(_ context.Context, author primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(Op{Name: "DeleteRecipesByAuthor", ID: author}); err != nil {
		return 0, err
	}
	var n int64
	for id, r := range s.recipes {
		if r.Author == author {
			delete(s.recipes, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) FindRecipes(_ context.Context, query repositories.RecipeQuery) ([]models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.matchRecipes(query)
	sortRecipes(out, query.Sort)
	return page(out, query.Skip, query.Limit), nil
}

func (s *Store) CountRecipes(_ context.Context, query repositories.RecipeQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.matchRecipes(query))), nil
}

func (s *Store) SimilarRecipes(_ context.Context, recipe *models.Recipe, limit int64) ([]models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Recipe{}
	for _, r := range s.sortedRecipes() {
		if r.ID == recipe.ID || !r.IsPublished {
			continue
		}
		similar := r.Cuisine == recipe.Cuisine || r.DietaryType == recipe.DietaryType || r.Category == recipe.Category
		for _, tag := range r.Tags {
			similar = similar || slices.Contains(recipe.Tags, tag)
		}
		if similar {
			out = append(out, cloneRecipe(r))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Likes) != len(out[j].Likes) {
			return len(out[i].Likes) > len(out[j].Likes)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, 0, limit), nil
}

func (s *Store) IncrementViewCount(_ context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	return s.updateRecipe(Op{Name: "IncrementViewCount", ID: id}, func(r *models.Recipe) { r.ViewCount++ })
}

func (s *Store) SetFeatured(_ context.Context, id primitive.ObjectID, featured bool) (*models.Recipe, error) {
	return s.updateRecipe(Op{Name: "SetFeatured", ID: id}, func(r *models.Recipe) { r.IsFeatured = featured })
}

func (s *Store) AddLike(_ context.Context, id, userID primitive.ObjectID) (*models.Recipe, error) {
	return s.updateRecipe(Op{Name: "AddLike", ID: id}, func(r *models.Recipe) {
		if !slices.Contains(r.Likes, userID) {
			r.Likes = append(r.Likes, userID)
		}
	})
}

func (s *Store) RemoveLike(_ context.Context, id, userID primitive.ObjectID) (*models.Recipe, error) {
	return s.updateRecipe(Op{Name: "RemoveLike", ID: id}, func(r *models.Recipe) { r.Likes = without(r.Likes, userID) })
}

func (s *Store) PushComment(_ context.Context, id primitive.ObjectID, comment models.Comment) (*models.Recipe, error) {
	return s.updateRecipe(Op{Name: "PushComment", ID: id}, func(r *models.Recipe) { r.Comments = append(r.Comments, comment) })
}

func (s *Store) PullComment(_ context.Context, id, commentID primitive.ObjectID) (*models.Recipe, error) {
	return s.updateRecipe(Op{Name: "PullComment", ID: id}, func(r *models.Recipe) {
		r.Comments = slices.DeleteFunc(r.Comments, func(c models.Comment) bool { return c.ID == commentID })
	})
}

// SetRecipeCreatedAt backdates a recipe for time window tests
func (s *Store) SetRecipeCreatedAt(id primitive.ObjectID, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.recipes[id]; ok {
		r.CreatedAt = t
		s.recipes[id] = r
	}
}

// SetUserCreatedAt backdates a user for time window tests
func (s *Store) SetUserCreatedAt(id primitive.ObjectID, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.CreatedAt = t
		s.users[id] = u
	}
}

func (s *Store) updateRecipe(op Op, apply func(*models.Recipe)) (*models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(op); err != nil {
		return nil, err
	}
	r, ok := s.recipes[op.ID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	r = cloneRecipe(r)
	apply(&r)
	if op.Name != "IncrementViewCount" {
		r.UpdatedAt = s.Now()
	}
	s.recipes[op.ID] = r
	out := cloneRecipe(r)
	return &out, nil
}

func (s *Store) matchRecipes(q repositories.RecipeQuery) []models.Recipe {
	out := []models.Recipe{}
	for _, r := range s.sortedRecipes() {
		if q.PublishedOnly && !r.IsPublished {
			continue
		}
		if len(q.Authors) > 0 && !slices.Contains(q.Authors, r.Author) {
			continue
		}
		if !q.Since.IsZero() && r.CreatedAt.Before(q.Since) {
			continue
		}
		if q.Text != "" && !containsFold(r.Title, q.Text) && !containsFold(r.Description, q.Text) &&
			!slices.ContainsFunc(r.Tags, func(t string) bool { return containsFold(t, q.Text) }) {
			continue
		}
		if q.Cuisine != "" && !containsFold(r.Cuisine, q.Cuisine) {
			continue
		}
		if q.DietaryType != "" && r.DietaryType != q.DietaryType {
			continue
		}
		if q.Difficulty != "" && r.Difficulty != q.Difficulty {
			continue
		}
		if q.Category != "" && r.Category != q.Category {
			continue
		}
		if q.Ingredient != "" && !slices.ContainsFunc(r.Ingredients, func(i models.Ingredient) bool {
			return containsFold(i.Name, q.Ingredient)
		}) {
			continue
		}
		out = append(out, cloneRecipe(r))
	}
	return out
}

// sortedRecipes returns recipes oldest first, ties broken by id
func (s *Store) sortedRecipes() []models.Recipe {
	out := make([]models.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out
}

func sortRecipes(recipes []models.Recipe, by repositories.RecipeSort) {
	switch by {
	case repositories.SortOldest:
		// already oldest first
	case repositories.SortPopular, repositories.SortTrending:
		sort.SliceStable(recipes, func(i, j int) bool {
			a, b := recipes[i], recipes[j]
			if len(a.Likes) != len(b.Likes) {
				return len(a.Likes) > len(b.Likes)
			}
			if a.ViewCount != b.ViewCount {
				return a.ViewCount > b.ViewCount
			}
			return a.CreatedAt.After(b.CreatedAt)
		})
	default:
		slices.Reverse(recipes)
	}
}

// --- analytics ---

func (s *Store) CountByField(_ context.Context, field string, limit int64) ([]models.Bucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[string]int{}
	for _, r := range s.recipes {
		if !r.IsPublished {
			continue
		}
		var key string
		switch field {
		case "cuisine":
			key = r.Cuisine
		case "difficulty":
			key = r.Difficulty
		case "dietaryType":
			key = r.DietaryType
		case "category":
			key = r.Category
		}
		counts[key]++
	}
	out := make([]models.Bucket, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.Bucket{ID: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	return page(out, 0, limit), nil
}

func (s *Store) MonthlyActivity(_ context.Context, since time.Time) ([]models.MonthlyActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byKey := map[models.MonthKey]*models.MonthlyActivity{}
	for _, r := range s.recipes {
		if !r.IsPublished || r.CreatedAt.Before(since) {
			continue
		}
		t := r.CreatedAt.UTC()
		key := models.MonthKey{Year: t.Year(), Month: int(t.Month())}
		m, ok := byKey[key]
		if !ok {
			m = &models.MonthlyActivity{ID: key}
			byKey[key] = m
		}
		m.Recipes++
		m.TotalLikes += len(r.Likes)
		m.TotalComments += len(r.Comments)
	}
	out := make([]models.MonthlyActivity, 0, len(byKey))
	for _, m := range byKey {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID.Year != out[j].ID.Year {
			return out[i].ID.Year < out[j].ID.Year
		}
		return out[i].ID.Month < out[j].ID.Month
	})
	return out, nil
}

func (s *Store) TopRecipes(_ context.Context, limit int64, publishedOnly bool) ([]models.TopRecipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := repositories.RecipeQuery{PublishedOnly: publishedOnly}
	recipes := s.matchRecipes(q)
	sortRecipes(recipes, repositories.SortPopular)
	out := []models.TopRecipe{}
	for _, r := range page(recipes, 0, limit) {
		out = append(out, models.TopRecipe{
			ID:           r.ID,
			Title:        r.Title,
			Image:        r.Image,
			Cuisine:      r.Cuisine,
			AuthorID:     r.Author,
			LikeCount:    len(r.Likes),
			CommentCount: len(r.Comments),
			ViewCount:    r.ViewCount,
		})
	}
	return out, nil
}

func (s *Store) TopContributors(_ context.Context, limit int64) ([]models.Contributor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byAuthor := map[primitive.ObjectID]*models.Contributor{}
	for _, r := range s.recipes {
		if !r.IsPublished {
			continue
		}
		c, ok := byAuthor[r.Author]
		if !ok {
			c = &models.Contributor{ID: r.Author}
			byAuthor[r.Author] = c
		}
		c.Recipes++
		c.TotalLikes += len(r.Likes)
	}
	ranked := make([]models.Contributor, 0, len(byAuthor))
	for _, c := range byAuthor {
		ranked = append(ranked, *c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Recipes != ranked[j].Recipes {
			return ranked[i].Recipes > ranked[j].Recipes
		}
		if ranked[i].TotalLikes != ranked[j].TotalLikes {
			return ranked[i].TotalLikes > ranked[j].TotalLikes
		}
		return ranked[i].ID.Hex() < ranked[j].ID.Hex()
	})
	out := []models.Contributor{}
	for _, c := range page(ranked, 0, limit) {
		u, ok := s.users[c.ID]
		if !ok {
			continue
		}
		c.Username, c.Name, c.ProfileImage = u.Username, u.Name, u.ProfileImage
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) EngagementTotals(_ context.Context) (models.EngagementTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t models.EngagementTotals
	for _, r := range s.recipes {
		if !r.IsPublished {
			continue
		}
		t.TotalLikes += len(r.Likes)
		t.TotalComments += len(r.Comments)
		t.TotalViews += r.ViewCount
	}
	return t, nil
}

// --- notifications ---

func (s *Store) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(Op{Name: "CreateNotification", ID: n.Recipient}); err != nil {
		return err
	}
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.Now()
	}
	for _, existing := range s.notifications {
		if existing.ID == n.ID {
			return repositories.ErrDuplicate
		}
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *Store) GetByRecipientID(_ context.Context, recipientID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range s.notifications {
		if n.Recipient == recipientID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return page(out, 0, limit), nil
}

func (s *Store) GetUnreadCount(_ context.Context, recipientID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, x := range s.notifications {
		if x.Recipient == recipientID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *Store) MarkAllAsRead(_ context.Context, recipientID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.notifications {
		if s.notifications[i].Recipient == recipientID && !s.notifications[i].IsRead {
			s.notifications[i].IsRead = true
			n++
		}
	}
	return n, nil
}

// Notifications returns every stored notification in insertion order
func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notifications)
}

// --- helpers ---

func page[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}

func userSet(u *models.User, field repositories.UserField) *[]primitive.ObjectID {
	switch field {
	case repositories.FollowersField:
		return &u.Followers
	case repositories.FollowingField:
		return &u.Following
	default:
		return &u.SavedRecipes
	}
}

func without(ids []primitive.ObjectID, value primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id != value {
			out = append(out, id)
		}
	}
	return out
}

func nonNil(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func cloneUser(u models.User) models.User {
	u.Followers = slices.Clone(nonNil(u.Followers))
	u.Following = slices.Clone(nonNil(u.Following))
	u.SavedRecipes = slices.Clone(nonNil(u.SavedRecipes))
	return u
}

func cloneUsers(users []models.User) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, cloneUser(u))
	}
	return out
}

func cloneRecipe(r models.Recipe) models.Recipe {
	r.Likes = slices.Clone(nonNil(r.Likes))
	r.Tags = slices.Clone(r.Tags)
	r.Images = slices.Clone(r.Images)
	r.Ingredients = slices.Clone(r.Ingredients)
	r.Steps = slices.Clone(r.Steps)
	comments := make([]models.Comment, 0, len(r.Comments))
	for _, c := range r.Comments {
		c.Likes = slices.Clone(c.Likes)
		c.Replies = slices.Clone(c.Replies)
		comments = append(comments, c)
	}
	r.Comments = comments
	return r
}
