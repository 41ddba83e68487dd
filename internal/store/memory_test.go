package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
)

func seedUser(t *testing.T, m *MemoryStore, id string) {
	t.Helper()
	err := m.CreateUser(context.Background(), &domain.User{
		ID:        id,
		Username:  "user-" + id,
		Email:     id + "@example.com",
		Role:      domain.RoleUser,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func seedMovie(t *testing.T, m *MemoryStore, id string, genres ...string) {
	t.Helper()
	err := m.CreateMovie(context.Background(), &domain.Movie{
		ID:          id,
		Title:       "Movie " + id,
		ReleaseYear: 2020,
		Genres:      pq.StringArray(genres),
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed movie %s: %v", id, err)
	}
}

func seedWatch(t *testing.T, m *MemoryStore, userID, movieID string) {
	t.Helper()
	err := m.CreateWatch(context.Background(), &domain.WatchRecord{
		UserID:    userID,
		MovieID:   movieID,
		WatchedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed watch %s/%s: %v", userID, movieID, err)
	}
}

func seedReview(t *testing.T, m *MemoryStore, id, userID, movieID string) {
	t.Helper()
	err := m.CreateReview(context.Background(), &domain.Review{
		ID:           id,
		UserID:       userID,
		MovieID:      movieID,
		Content:      "review " + id,
		GeneralScore: 4,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed review %s: %v", id, err)
	}
}

func TestCreateReviewRequiresWatch(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	seedUser(t, m, "u1")
	seedMovie(t, m, "m1", "Drama")

	err := m.CreateReview(ctx, &domain.Review{ID: "r1", UserID: "u1", MovieID: "m1"})
	if !errors.Is(err, ErrNotWatched) {
		t.Fatalf("expected ErrNotWatched, got %v", err)
	}

	seedWatch(t, m, "u1", "m1")
	seedReview(t, m, "r1", "u1", "m1")

	err = m.CreateReview(ctx, &domain.Review{ID: "r2", UserID: "u1", MovieID: "m1"})
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
}

func TestDuplicateWatch(t *testing.T) {
	m := NewMemoryStore()
	seedUser(t, m, "u1")
	seedMovie(t, m, "m1", "Drama")
	seedWatch(t, m, "u1", "m1")

	err := m.CreateWatch(context.Background(), &domain.WatchRecord{UserID: "u1", MovieID: "m1"})
	if !errors.Is(err, ErrAlreadyWatched) {
		t.Fatalf("expected ErrAlreadyWatched, got %v", err)
	}
}

func TestDeleteWatchCascade(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	seedUser(t, m, "u1")
	seedUser(t, m, "u2")
	seedMovie(t, m, "m1", "Drama")
	seedWatch(t, m, "u1", "m1")
	seedReview(t, m, "r1", "u1", "m1")

	if _, _, err := m.CreateFlag(ctx, &domain.Flag{ReporterID: "u2", ReviewID: "r1", Reason: "spam"}, 10); err != nil {
		t.Fatalf("flag: %v", err)
	}

	if err := m.DeleteWatchCascade(ctx, "u1", "m1"); err != nil {
		t.Fatalf("cascade: %v", err)
	}

	if _, err := m.GetReviewByID(ctx, "r1"); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected review gone, got %v", err)
	}
	exists, err := m.WatchExists(ctx, "u1", "m1")
	if err != nil || exists {
		t.Fatalf("expected watch gone, exists=%v err=%v", exists, err)
	}
	flagged, err := m.ListHeavilyFlagged(ctx, 1, ListParams{Page: 1, PageSize: 10})
	if err != nil || len(flagged) != 0 {
		t.Fatalf("expected flags gone, got %d err=%v", len(flagged), err)
	}

	// Повторное снятие отметки
	if err := m.DeleteWatchCascade(ctx, "u1", "m1"); !errors.Is(err, ErrWatchNotFound) {
		t.Fatalf("expected ErrWatchNotFound, got %v", err)
	}

	// Отзыв можно создать заново после нового просмотра
	seedWatch(t, m, "u1", "m1")
	seedReview(t, m, "r2", "u1", "m1")
}

func TestFlagRules(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	seedUser(t, m, "author")
	seedUser(t, m, "reporter")
	seedMovie(t, m, "m1", "Drama")
	seedWatch(t, m, "author", "m1")
	seedReview(t, m, "r1", "author", "m1")

	// Жалоба на собственный отзыв
	if _, _, err := m.CreateFlag(ctx, &domain.Flag{ReporterID: "author", ReviewID: "r1"}, 10); !errors.Is(err, ErrSelfFlag) {
		t.Fatalf("expected ErrSelfFlag, got %v", err)
	}

	// Жалоба на несуществующий отзыв
	if _, _, err := m.CreateFlag(ctx, &domain.Flag{ReporterID: "reporter", ReviewID: "missing"}, 10); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}

	count, hidden, err := m.CreateFlag(ctx, &domain.Flag{ReporterID: "reporter", ReviewID: "r1", Reason: "spam"}, 10)
	if err != nil || count != 1 || hidden {
		t.Fatalf("first flag: count=%d hidden=%v err=%v", count, hidden, err)
	}

	// Повторная жалоба того же пользователя
	if _, _, err := m.CreateFlag(ctx, &domain.Flag{ReporterID: "reporter", ReviewID: "r1"}, 10); !errors.Is(err, ErrAlreadyFlagged) {
		t.Fatalf("expected ErrAlreadyFlagged, got %v", err)
	}
}

func TestAutoHideAtThreshold(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	const threshold = 3

	seedUser(t, m, "author")
	seedMovie(t, m, "m1", "Drama")
	seedWatch(t, m, "author", "m1")
	seedReview(t, m, "r1", "author", "m1")

	for i := 0; i < threshold; i++ {
		reporter := fmt.Sprintf("reporter-%d", i)
		seedUser(t, m, reporter)
		count, hidden, err := m.CreateFlag(ctx, &domain.Flag{ReporterID: reporter, ReviewID: "r1", Reason: "abuse"}, threshold)
		if err != nil {
			t.Fatalf("flag %d: %v", i, err)
		}
		wantHidden := i == threshold-1
		if count != i+1 || hidden != wantHidden {
			t.Fatalf("flag %d: count=%d hidden=%v", i, count, hidden)
		}
	}

	review, err := m.GetReviewByID(ctx, "r1")
	if err != nil {
		t.Fatalf("get review: %v", err)
	}
	if !review.Hidden {
		t.Fatal("review should be hidden at threshold")
	}

	// Жалобы поверх порога принимаются, отзыв остается скрытым
	seedUser(t, m, "late")
	count, hidden, err := m.CreateFlag(ctx, &domain.Flag{ReporterID: "late", ReviewID: "r1", Reason: "abuse"}, threshold)
	if err != nil || count != threshold+1 || !hidden {
		t.Fatalf("late flag: count=%d hidden=%v err=%v", count, hidden, err)
	}
}

func TestConcurrentDuplicateFlags(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	seedUser(t, m, "author")
	seedUser(t, m, "reporter")
	seedMovie(t, m, "m1", "Drama")
	seedWatch(t, m, "author", "m1")
	seedReview(t, m, "r1", "author", "m1")

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := m.CreateFlag(ctx, &domain.Flag{ReporterID: "reporter", ReviewID: "r1", Reason: "spam"}, 10)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok, dup := 0, 0
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAlreadyFlagged):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != attempts-1 {
		t.Fatalf("expected exactly one successful flag, got ok=%d dup=%d", ok, dup)
	}
}

func TestHeavilyFlaggedOrdering(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	seedUser(t, m, "author")
	seedMovie(t, m, "m1", "Drama")
	seedMovie(t, m, "m2", "Drama")
	seedMovie(t, m, "m3", "Drama")
	seedWatch(t, m, "author", "m1")
	seedWatch(t, m, "author", "m2")
	seedWatch(t, m, "author", "m3")
	seedReview(t, m, "r-a", "author", "m1")
	seedReview(t, m, "r-b", "author", "m2")
	seedReview(t, m, "r-c", "author", "m3")

	flagTimes := map[string]int{"r-a": 2, "r-b": 3, "r-c": 2}
	for reviewID, n := range flagTimes {
		for i := 0; i < n; i++ {
			reporter := fmt.Sprintf("rep-%s-%d", reviewID, i)
			seedUser(t, m, reporter)
			if _, _, err := m.CreateFlag(ctx, &domain.Flag{ReporterID: reporter, ReviewID: reviewID, Reason: "x"}, 100); err != nil {
				t.Fatalf("flag %s: %v", reviewID, err)
			}
		}
	}

	flagged, err := m.ListHeavilyFlagged(ctx, 2, ListParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, f := range flagged {
		got = append(got, f.Review.ID)
	}
	// По убыванию числа жалоб, при равенстве по возрастанию ID
	want := []string{"r-b", "r-a", "r-c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	none, err := m.ListHeavilyFlagged(ctx, 4, ListParams{Page: 1, PageSize: 10})
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty result for high threshold, got %d err=%v", len(none), err)
	}
}

func TestHiddenReviewsListedAsIDsOnly(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	seedUser(t, m, "u1")
	seedUser(t, m, "u2")
	seedMovie(t, m, "m1", "Drama")
	seedWatch(t, m, "u1", "m1")
	seedWatch(t, m, "u2", "m1")
	seedReview(t, m, "r1", "u1", "m1")
	seedReview(t, m, "r2", "u2", "m1")

	if err := m.SetHidden(ctx, "r2", true); err != nil {
		t.Fatalf("hide: %v", err)
	}

	page, err := m.ListReviewsByMovie(ctx, "m1", ListParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Reviews) != 1 || page.Reviews[0].ID != "r1" {
		t.Fatalf("expected only r1 visible, got %d reviews", len(page.Reviews))
	}
	if len(page.HiddenIDs) != 1 || page.HiddenIDs[0] != "r2" {
		t.Fatalf("expected r2 in hidden ids, got %v", page.HiddenIDs)
	}

	// Администратор возвращает отзыв, он снова появляется в выдаче
	if err := m.SetHidden(ctx, "r2", false); err != nil {
		t.Fatalf("unhide: %v", err)
	}
	page, err = m.ListReviewsByMovie(ctx, "m1", ListParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list after unhide: %v", err)
	}
	if len(page.Reviews) != 2 || len(page.HiddenIDs) != 0 {
		t.Fatalf("expected both visible after unhide, got %d visible %d hidden", len(page.Reviews), len(page.HiddenIDs))
	}
}

func TestIncrementLikes(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	seedUser(t, m, "u1")
	seedMovie(t, m, "m1", "Drama")
	seedWatch(t, m, "u1", "m1")
	seedReview(t, m, "r1", "u1", "m1")

	for i := int64(1); i <= 3; i++ {
		likes, err := m.IncrementLikes(ctx, "r1")
		if err != nil || likes != i {
			t.Fatalf("like %d: likes=%d err=%v", i, likes, err)
		}
	}
	if _, err := m.IncrementLikes(ctx, "missing"); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}

func TestUserStatsZeroReviews(t *testing.T) {
	m := NewMemoryStore()
	seedUser(t, m, "u1")

	stats, err := m.UserStats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ReviewCount != 0 || stats.LikesTotal != 0 {
		t.Fatalf("expected zero counters, got %+v", stats)
	}
	if stats.Averages.Direction != 0 || stats.Averages.General != 0 {
		t.Fatalf("expected zero averages, got %+v", stats.Averages)
	}
}

func TestUserStatsAverages(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	seedUser(t, m, "u1")
	seedMovie(t, m, "m1", "Drama")
	seedMovie(t, m, "m2", "Drama")
	seedWatch(t, m, "u1", "m1")
	seedWatch(t, m, "u1", "m2")

	reviews := []*domain.Review{
		{ID: "r1", UserID: "u1", MovieID: "m1", DirectionScore: 2, ScreenplayScore: 3, CinematographyScore: 4, GeneralScore: 5},
		{ID: "r2", UserID: "u1", MovieID: "m2", DirectionScore: 4, ScreenplayScore: 5, CinematographyScore: 2, GeneralScore: 3},
	}
	for _, r := range reviews {
		if err := m.CreateReview(ctx, r); err != nil {
			t.Fatalf("create %s: %v", r.ID, err)
		}
	}
	if _, err := m.IncrementLikes(ctx, "r1"); err != nil {
		t.Fatalf("like: %v", err)
	}

	stats, err := m.UserStats(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ReviewCount != 2 || stats.LikesTotal != 1 {
		t.Fatalf("counters: %+v", stats)
	}
	if stats.Averages.Direction != 3 || stats.Averages.Screenplay != 4 ||
		stats.Averages.Cinematography != 3 || stats.Averages.General != 4 {
		t.Fatalf("averages: %+v", stats.Averages)
	}
}

func TestFavorites(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	seedUser(t, m, "u1")
	seedMovie(t, m, "m1", "Drama")
	seedMovie(t, m, "m2", "Action")

	if err := m.AddFavorite(ctx, &domain.Favorite{UserID: "u1", MovieID: "m1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.AddFavorite(ctx, &domain.Favorite{UserID: "u1", MovieID: "m1"}); !errors.Is(err, ErrAlreadyFavorite) {
		t.Fatalf("expected ErrAlreadyFavorite, got %v", err)
	}
	if err := m.AddFavorite(ctx, &domain.Favorite{UserID: "u1", MovieID: "m2"}); err != nil {
		t.Fatalf("add second: %v", err)
	}

	ids, err := m.FavoriteMovieIDs(ctx, "u1")
	if err != nil || len(ids) != 2 || ids[0] != "m1" || ids[1] != "m2" {
		t.Fatalf("expected [m1 m2], got %v err=%v", ids, err)
	}

	if err := m.RemoveFavorite(ctx, "u1", "m1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := m.RemoveFavorite(ctx, "u1", "m1"); !errors.Is(err, ErrFavoriteNotFound) {
		t.Fatalf("expected ErrFavoriteNotFound, got %v", err)
	}
}

func TestListByGenres(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	seedMovie(t, m, "m1", "Drama", "Crime")
	seedMovie(t, m, "m2", "Action")
	seedMovie(t, m, "m3", "Crime", "Action")

	movies, total, err := m.ListByGenres(ctx, []string{"Crime"}, ListParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(movies) != 2 {
		t.Fatalf("expected 2 crime movies, got total=%d len=%d", total, len(movies))
	}

	// Пересечение по нескольким жанрам не дублирует фильм
	movies, total, err = m.ListByGenres(ctx, []string{"Crime", "Action"}, ListParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 distinct movies, got %d", total)
	}
	seen := map[string]bool{}
	for _, mv := range movies {
		if seen[mv.ID] {
			t.Fatalf("duplicate movie %s in result", mv.ID)
		}
		seen[mv.ID] = true
	}
}

func TestReviewPagination(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	seedMovie(t, m, "m1", "Drama")
	for i := 0; i < 5; i++ {
		user := fmt.Sprintf("u%d", i)
		seedUser(t, m, user)
		seedWatch(t, m, user, "m1")
		seedReview(t, m, fmt.Sprintf("r%d", i), user, "m1")
	}

	page, err := m.ListReviewsByMovie(ctx, "m1", ListParams{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalCount != 5 {
		t.Fatalf("expected total 5, got %d", page.TotalCount)
	}
	if len(page.Reviews) != 2 {
		t.Fatalf("expected 2 reviews on page 2, got %d", len(page.Reviews))
	}
	if page.Page != 2 || page.PageSize != 2 {
		t.Fatalf("page metadata: %+v", page)
	}
}
