package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/internal/repository"
	"github.com/Ramouth/BiomeQuest-sub000/internal/repository/repotest"
)

func TestBadgeRepository_GetUnlockable(t *testing.T) {
	db := repotest.NewDB(t)
	repo := repository.NewBadgeRepository(db)
	ctx := context.Background()

	user := repotest.CreateUser(t, db, "alice", 30, 120)
	sprout := repotest.CreateBadge(t, db, "Sprout", 10)
	repotest.CreateBadge(t, db, "Seedling", 5)
	repotest.CreateBadge(t, db, "Gardener", 50)

	badges, err := repo.GetUnlockable(ctx, user.ID, 10)
	if err != nil {
		t.Fatalf("GetUnlockable() failed: %v", err)
	}
	if len(badges) != 2 {
		t.Fatalf("Expected 2 unlockable badges, got %d", len(badges))
	}
	if badges[0].Name != "Seedling" || badges[1].Name != "Sprout" {
		t.Errorf("Expected ascending thresholds [Seedling Sprout], got [%s %s]", badges[0].Name, badges[1].Name)
	}

	// Already unlocked badges are excluded
	if _, err := repo.Unlock(ctx, user.ID, sprout.ID, time.Now()); err != nil {
		t.Fatalf("Unlock() failed: %v", err)
	}
	badges, err = repo.GetUnlockable(ctx, user.ID, 10)
	if err != nil {
		t.Fatalf("GetUnlockable() failed: %v", err)
	}
	if len(badges) != 1 || badges[0].Name != "Seedling" {
		t.Errorf("Expected only Seedling to remain unlockable, got %+v", badges)
	}
}

func TestBadgeRepository_GetUnlockable_SkipsInactive(t *testing.T) {
	db := repotest.NewDB(t)
	repo := repository.NewBadgeRepository(db)
	ctx := context.Background()

	user := repotest.CreateUser(t, db, "alice", 30, 120)
	retired := repotest.CreateBadge(t, db, "Retired", 1)
	if err := db.Model(retired).Update("is_active", false).Error; err != nil {
		t.Fatalf("Failed to deactivate badge: %v", err)
	}

	badges, err := repo.GetUnlockable(ctx, user.ID, 100)
	if err != nil {
		t.Fatalf("GetUnlockable() failed: %v", err)
	}
	if len(badges) != 0 {
		t.Errorf("Expected no unlockable badges, got %d", len(badges))
	}
}

func TestBadgeRepository_Unlock_Idempotent(t *testing.T) {
	db := repotest.NewDB(t)
	repo := repository.NewBadgeRepository(db)
	ctx := context.Background()

	user := repotest.CreateUser(t, db, "alice", 30, 120)
	badge := repotest.CreateBadge(t, db, "Sprout", 10)

	inserted, err := repo.Unlock(ctx, user.ID, badge.ID, time.Now())
	if err != nil {
		t.Fatalf("First Unlock() failed: %v", err)
	}
	if !inserted {
		t.Error("Expected first Unlock() to report an insert")
	}

	inserted, err = repo.Unlock(ctx, user.ID, badge.ID, time.Now())
	if err != nil {
		t.Fatalf("Duplicate Unlock() should be swallowed, got: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate Unlock() to report no insert")
	}

	count, err := repo.GetUserBadgeCount(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserBadgeCount() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 user badge row, got %d", count)
	}
}

func TestBadgeRepository_Unlock_Concurrent(t *testing.T) {
	db := repotest.NewDB(t)
	repo := repository.NewBadgeRepository(db)
	ctx := context.Background()

	user := repotest.CreateUser(t, db, "alice", 30, 120)
	badge := repotest.CreateBadge(t, db, "Sprout", 10)

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		errs []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := repo.Unlock(ctx, user.ID, badge.ID, time.Now())
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if inserted {
				wins++
			}
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("Concurrent Unlock() returned errors: %v", errs)
	}
	if wins != 1 {
		t.Errorf("Expected exactly one winner, got %d", wins)
	}
	holders, err := repo.GetBadgeHoldersCount(ctx, badge.ID)
	if err != nil {
		t.Fatalf("GetBadgeHoldersCount() failed: %v", err)
	}
	if holders != 1 {
		t.Errorf("Expected 1 holder, got %d", holders)
	}
}

func TestBadgeRepository_GetUserBadges(t *testing.T) {
	db := repotest.NewDB(t)
	repo := repository.NewBadgeRepository(db)
	ctx := context.Background()

	user := repotest.CreateUser(t, db, "alice", 30, 120)
	first := repotest.CreateBadge(t, db, "Sprout", 10)
	second := repotest.CreateBadge(t, db, "Gardener", 50)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	if _, err := repo.Unlock(ctx, user.ID, second.ID, base.Add(time.Hour)); err != nil {
		t.Fatalf("Unlock() failed: %v", err)
	}
	if _, err := repo.Unlock(ctx, user.ID, first.ID, base); err != nil {
		t.Fatalf("Unlock() failed: %v", err)
	}

	userBadges, err := repo.GetUserBadges(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserBadges() failed: %v", err)
	}
	if len(userBadges) != 2 {
		t.Fatalf("Expected 2 user badges, got %d", len(userBadges))
	}
	if userBadges[0].Badge.Name != "Sprout" {
		t.Errorf("Expected oldest unlock first, got %q", userBadges[0].Badge.Name)
	}
}

func TestBadgeRepository_UpsertByName(t *testing.T) {
	db := repotest.NewDB(t)
	repo := repository.NewBadgeRepository(db)
	ctx := context.Background()

	repotest.CreateBadge(t, db, "Sprout", 10)

	updated := &models.Badge{Name: "Sprout", Emoji: "🌿", PointsRequired: 15, IsActive: true}
	if err := repo.UpsertByName(ctx, updated); err != nil {
		t.Fatalf("UpsertByName() failed: %v", err)
	}

	badges, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() failed: %v", err)
	}
	if len(badges) != 1 {
		t.Fatalf("Expected upsert to keep a single badge, got %d", len(badges))
	}
	if badges[0].PointsRequired != 15 {
		t.Errorf("Expected threshold 15 after upsert, got %d", badges[0].PointsRequired)
	}
}
