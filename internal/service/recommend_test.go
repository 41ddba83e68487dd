package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
	"github.com/Carolinyr9/my-movinhos-sub000/internal/store"
)

func (f *fixture) favorite(t *testing.T, userID, movieID string) {
	t.Helper()
	err := f.mem.AddFavorite(context.Background(), &domain.Favorite{
		UserID:    userID,
		MovieID:   movieID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("favorite %s/%s: %v", userID, movieID, err)
	}
}

func TestTopGenresFrequency(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	f.addUser(t, "u1")
	f.addMovie(t, "m1", "Action", "Thriller")
	f.addMovie(t, "m2", "Action")
	f.addMovie(t, "m3", "Drama")

	f.watch(t, "u1", "m1")
	f.watch(t, "u1", "m2")
	f.favorite(t, "u1", "m3")

	genres, err := f.recommend.TopGenres(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("top genres: %v", err)
	}
	if len(genres) != 2 {
		t.Fatalf("expected 2 genres, got %v", genres)
	}
	if genres[0].Genre != "Action" || genres[0].Count != 2 {
		t.Fatalf("expected Action x2 first, got %+v", genres[0])
	}
	// При равной частоте побеждает жанр, встреченный раньше
	if genres[1].Genre != "Thriller" || genres[1].Count != 1 {
		t.Fatalf("expected Thriller second, got %+v", genres[1])
	}
}

func TestTopGenresDedupesWatchedAndFavorited(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	f.addUser(t, "u1")
	f.addMovie(t, "m1", "Crime")

	f.watch(t, "u1", "m1")
	f.favorite(t, "u1", "m1")

	genres, err := f.recommend.TopGenres(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("top genres: %v", err)
	}
	// Фильм и просмотрен, и в избранном - жанр считается один раз
	if len(genres) != 1 || genres[0].Count != 1 {
		t.Fatalf("expected Crime x1, got %v", genres)
	}
}

func TestTopGenresEmptyHistory(t *testing.T) {
	f := newFixture(t, 10)
	f.addUser(t, "u1")

	genres, err := f.recommend.TopGenres(context.Background(), "u1", 3)
	if err != nil {
		t.Fatalf("top genres: %v", err)
	}
	if len(genres) != 0 {
		t.Fatalf("expected empty result, got %v", genres)
	}
}

func TestRecommendRequiresGenres(t *testing.T) {
	f := newFixture(t, 10)

	_, _, err := f.recommend.Recommend(context.Background(), nil, store.ListParams{Page: 1, PageSize: 10})
	if !errors.Is(err, store.ErrNoGenres) {
		t.Fatalf("expected ErrNoGenres, got %v", err)
	}
}

func TestRecommendForUser(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	f.addUser(t, "u1")
	f.addMovie(t, "m1", "Action")
	f.addMovie(t, "m2", "Action", "Drama")
	f.addMovie(t, "m3", "Comedy")

	f.watch(t, "u1", "m1")

	movies, total, err := f.recommend.ForUser(ctx, "u1", 3, store.ListParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if total != 2 || len(movies) != 2 {
		t.Fatalf("expected 2 action movies, got total=%d len=%d", total, len(movies))
	}
	for _, mv := range movies {
		if mv.ID == "m3" {
			t.Fatal("comedy movie should not be recommended")
		}
	}

	// Пустая история дает пустую выдачу, а не ошибку
	f.addUser(t, "fresh")
	movies, total, err = f.recommend.ForUser(ctx, "fresh", 3, store.ListParams{Page: 1, PageSize: 10})
	if err != nil || total != 0 || len(movies) != 0 {
		t.Fatalf("expected empty recommendations, got total=%d err=%v", total, err)
	}
}
