package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
	"github.com/Carolinyr9/my-movinhos-sub000/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture собирает все сервисы поверх общего хранилища в памяти.
type fixture struct {
	mem        *store.MemoryStore
	watches    *WatchService
	reviews    *ReviewService
	moderation *ModerationService
	stats      *StatsService
	recommend  *RecommendService
}

func newFixture(t *testing.T, autoHideThreshold int) *fixture {
	t.Helper()
	mem := store.NewMemoryStore()
	logger := testLogger()
	return &fixture{
		mem:        mem,
		watches:    NewWatchService(mem.Watches(), mem.Movies(), logger),
		reviews:    NewReviewService(mem.Reviews(), mem.Movies(), mem.Users(), logger),
		moderation: NewModerationService(mem.Flags(), mem.Reviews(), mem.Users(), autoHideThreshold, logger),
		stats:      NewStatsService(mem.Reviews(), mem.Users(), logger),
		recommend:  NewRecommendService(mem.Watches(), mem.Favorites(), mem.Movies(), logger),
	}
}

func (f *fixture) addUser(t *testing.T, id string) {
	t.Helper()
	err := f.mem.CreateUser(context.Background(), &domain.User{
		ID:       id,
		Username: "user-" + id,
		Email:    id + "@example.com",
		Role:     domain.RoleUser,
	})
	if err != nil {
		t.Fatalf("add user %s: %v", id, err)
	}
}

func (f *fixture) addMovie(t *testing.T, id string, genres ...string) {
	t.Helper()
	err := f.mem.CreateMovie(context.Background(), &domain.Movie{
		ID:          id,
		Title:       "Movie " + id,
		ReleaseYear: 2021,
		Genres:      pq.StringArray(genres),
	})
	if err != nil {
		t.Fatalf("add movie %s: %v", id, err)
	}
}

func (f *fixture) watch(t *testing.T, userID, movieID string) {
	t.Helper()
	if _, err := f.watches.MarkWatched(context.Background(), userID, movieID); err != nil {
		t.Fatalf("watch %s/%s: %v", userID, movieID, err)
	}
}

func (f *fixture) review(t *testing.T, userID, movieID string) *domain.Review {
	t.Helper()
	review, err := f.reviews.Create(context.Background(), userID, &domain.CreateReviewRequest{
		MovieID:             movieID,
		Content:             "solid picture",
		DirectionScore:      4,
		ScreenplayScore:     3,
		CinematographyScore: 5,
		GeneralScore:        4,
	})
	if err != nil {
		t.Fatalf("review %s/%s: %v", userID, movieID, err)
	}
	return review
}

func TestMarkWatchedUnknownMovie(t *testing.T) {
	f := newFixture(t, 10)
	f.addUser(t, "u1")

	_, err := f.watches.MarkWatched(context.Background(), "u1", "missing")
	if !errors.Is(err, store.ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}
}

func TestReviewLifecycle(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	f.addUser(t, "u1")
	f.addMovie(t, "m1", "Drama")

	// Отзыв без просмотра невозможен
	_, err := f.reviews.Create(ctx, "u1", &domain.CreateReviewRequest{MovieID: "m1", Content: "x"})
	if !errors.Is(err, store.ErrNotWatched) {
		t.Fatalf("expected ErrNotWatched, got %v", err)
	}

	f.watch(t, "u1", "m1")
	review := f.review(t, "u1", "m1")

	// Второй отзыв на тот же фильм невозможен
	_, err = f.reviews.Create(ctx, "u1", &domain.CreateReviewRequest{MovieID: "m1", Content: "again"})
	if !errors.Is(err, store.ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}

	// Обновление чужого отзыва запрещено
	f.addUser(t, "u2")
	_, err = f.reviews.Update(ctx, review.ID, "u2", &domain.UpdateReviewRequest{Content: "hack"})
	if !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// Обновление владельцем сохраняет created_at
	updated, err := f.reviews.Update(ctx, review.ID, "u1", &domain.UpdateReviewRequest{
		Content:      "better on rewatch",
		GeneralScore: 5,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Content != "better on rewatch" || updated.GeneralScore != 5 {
		t.Fatalf("update not applied: %+v", updated)
	}
	if !updated.CreatedAt.Equal(review.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", review.CreatedAt, updated.CreatedAt)
	}

	// Снятие отметки о просмотре удаляет отзыв каскадно
	if err := f.watches.UnmarkWatched(ctx, "u1", "m1"); err != nil {
		t.Fatalf("unwatch: %v", err)
	}
	if _, err := f.reviews.GetByID(ctx, review.ID); !errors.Is(err, store.ErrReviewNotFound) {
		t.Fatalf("expected review gone, got %v", err)
	}

	// Цикл можно пройти заново
	f.watch(t, "u1", "m1")
	f.review(t, "u1", "m1")
}

func TestReviewDeletePermissions(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	f.addUser(t, "author")
	f.addUser(t, "other")
	f.addMovie(t, "m1", "Drama")
	f.watch(t, "author", "m1")
	review := f.review(t, "author", "m1")

	if err := f.reviews.Delete(ctx, review.ID, "other", false); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := f.reviews.Delete(ctx, review.ID, "other", true); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := f.reviews.Delete(ctx, review.ID, "author", false); !errors.Is(err, store.ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}

func TestLikeCountsRepeats(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	f.addUser(t, "u1")
	f.addMovie(t, "m1", "Drama")
	f.watch(t, "u1", "m1")
	review := f.review(t, "u1", "m1")

	// Лайки не дедуплицируются: каждый вызов увеличивает счетчик
	for i := int64(1); i <= 3; i++ {
		likes, err := f.reviews.Like(ctx, review.ID)
		if err != nil || likes != i {
			t.Fatalf("like %d: likes=%d err=%v", i, likes, err)
		}
	}
}

func TestStatisticsZeroAndNonZero(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	f.addUser(t, "u1")

	stats, err := f.stats.UserStatistics(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ReviewCount != 0 || stats.Averages.General != 0 {
		t.Fatalf("expected zeroed statistics, got %+v", stats)
	}

	if _, err := f.stats.UserStatistics(ctx, "missing"); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	f.addMovie(t, "m1", "Drama")
	f.watch(t, "u1", "m1")
	f.review(t, "u1", "m1")

	averages, err := f.stats.AverageWeighted(ctx, "u1")
	if err != nil {
		t.Fatalf("averages: %v", err)
	}
	if averages.Direction != 4 || averages.Screenplay != 3 || averages.Cinematography != 5 || averages.General != 4 {
		t.Fatalf("averages: %+v", averages)
	}
}

func TestForMovieSplitsHidden(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	f.addUser(t, "u1")
	f.addUser(t, "u2")
	f.addMovie(t, "m1", "Drama")
	f.watch(t, "u1", "m1")
	f.watch(t, "u2", "m1")
	f.review(t, "u1", "m1")
	hidden := f.review(t, "u2", "m1")

	if err := f.moderation.ToggleHide(ctx, hidden.ID, true); err != nil {
		t.Fatalf("hide: %v", err)
	}

	page, err := f.reviews.ForMovie(ctx, "m1", store.ListParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Reviews) != 1 || len(page.HiddenIDs) != 1 || page.HiddenIDs[0] != hidden.ID {
		t.Fatalf("expected 1 visible and 1 hidden id, got %d/%v", len(page.Reviews), page.HiddenIDs)
	}

	if _, err := f.reviews.ForMovie(ctx, "missing", store.ListParams{Page: 1, PageSize: 10}); !errors.Is(err, store.ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}
}

func TestWatchedOrderIsStable(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	f.addUser(t, "u1")
	f.addMovie(t, "m1", "Drama")
	f.addMovie(t, "m2", "Action")
	f.addMovie(t, "m3", "Crime")

	for _, id := range []string{"m2", "m1", "m3"} {
		f.watch(t, "u1", id)
		time.Sleep(time.Millisecond)
	}

	ids, err := f.mem.WatchedMovieIDs(ctx, "u1")
	if err != nil {
		t.Fatalf("watched: %v", err)
	}
	want := []string{"m2", "m1", "m3"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}
