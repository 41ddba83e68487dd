package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/store"
)

func TestFlagValidation(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	f.addUser(t, "author")
	f.addUser(t, "reporter")
	f.addMovie(t, "m1", "Drama")
	f.watch(t, "author", "m1")
	review := f.review(t, "author", "m1")

	// Неизвестный податель
	if _, _, err := f.moderation.Flag(ctx, review.ID, "ghost", "spam"); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	// Несуществующий отзыв
	if _, _, err := f.moderation.Flag(ctx, "missing", "reporter", "spam"); !errors.Is(err, store.ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
	// Жалоба на собственный отзыв
	if _, _, err := f.moderation.Flag(ctx, review.ID, "author", "spam"); !errors.Is(err, store.ErrSelfFlag) {
		t.Fatalf("expected ErrSelfFlag, got %v", err)
	}

	flag, count, err := f.moderation.Flag(ctx, review.ID, "reporter", "spam")
	if err != nil || count != 1 {
		t.Fatalf("flag: count=%d err=%v", count, err)
	}
	if flag.ReviewID != review.ID || flag.ReporterID != "reporter" || flag.Reason != "spam" {
		t.Fatalf("flag fields: %+v", flag)
	}

	// Повторная жалоба
	if _, _, err := f.moderation.Flag(ctx, review.ID, "reporter", "again"); !errors.Is(err, store.ErrAlreadyFlagged) {
		t.Fatalf("expected ErrAlreadyFlagged, got %v", err)
	}
}

func TestAutoHideAndAdminUnhide(t *testing.T) {
	const threshold = 3
	f := newFixture(t, threshold)
	ctx := context.Background()
	f.addUser(t, "author")
	f.addMovie(t, "m1", "Drama")
	f.watch(t, "author", "m1")
	review := f.review(t, "author", "m1")

	for i := 0; i < threshold; i++ {
		reporter := fmt.Sprintf("rep-%d", i)
		f.addUser(t, reporter)
		if _, _, err := f.moderation.Flag(ctx, review.ID, reporter, "abuse"); err != nil {
			t.Fatalf("flag %d: %v", i, err)
		}
	}

	current, err := f.reviews.GetByID(ctx, review.ID)
	if err != nil || !current.Hidden {
		t.Fatalf("review should be hidden at threshold, hidden=%v err=%v", current != nil && current.Hidden, err)
	}

	// Жалоба поверх порога принимается, отзыв остается скрытым
	f.addUser(t, "late")
	if _, count, err := f.moderation.Flag(ctx, review.ID, "late", "abuse"); err != nil || count != threshold+1 {
		t.Fatalf("late flag: count=%d err=%v", count, err)
	}

	// Единственный путь обратно - явное действие администратора
	if err := f.moderation.ToggleHide(ctx, review.ID, false); err != nil {
		t.Fatalf("unhide: %v", err)
	}
	current, err = f.reviews.GetByID(ctx, review.ID)
	if err != nil || current.Hidden {
		t.Fatalf("review should be visible after unhide, err=%v", err)
	}
}

func TestHeavilyFlaggedFloor(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	f.addUser(t, "author")
	f.addUser(t, "reporter")
	f.addMovie(t, "m1", "Drama")
	f.watch(t, "author", "m1")
	review := f.review(t, "author", "m1")
	if _, _, err := f.moderation.Flag(ctx, review.ID, "reporter", "spam"); err != nil {
		t.Fatalf("flag: %v", err)
	}

	// minFlags < 1 поднимается до 1
	flagged, err := f.moderation.HeavilyFlagged(ctx, 0, store.ListParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(flagged) != 1 || flagged[0].FlagCount != 1 {
		t.Fatalf("expected one flagged review, got %d", len(flagged))
	}
}
