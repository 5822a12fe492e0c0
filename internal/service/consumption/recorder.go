package consumption

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/internal/repository"
)

// Recording is the outcome of recording one consumption.
type Recording struct {
	User         models.User
	Plant        models.Plant
	Log          models.ConsumptionLog
	PointsEarned int
	IsFirstTime  bool
	Message      string
	TotalPoints  int
}

// Recorder writes a consumption and its point award.
type Recorder struct{}

// NewRecorder creates a new recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordConsumption records that userID ate plantID at at. It must run on a
// transaction-bound DB: the user_plants upsert, the log insert and the point
// total are only consistent with each other inside one transaction.
//
// The user row is locked first, so concurrent logs for the same user run one
// after another and every point total includes all earlier commits.
//
// First-time detection relies on the (user_id, plant_id) unique index. The
// upsert either creates the row with times_eaten = 1 or increments it, so of
// two concurrent first logs exactly one reads back a count of 1.
func (r *Recorder) RecordConsumption(ctx context.Context, tx *repository.DB, userID, plantID uint, at time.Time) (*Recording, error) {
	users := repository.NewUserRepository(tx)
	plants := repository.NewPlantRepository(tx)
	consumption := repository.NewConsumptionRepository(tx)

	user, err := users.GetByIDForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	plant, err := plants.GetByID(ctx, plantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlantNotFound
		}
		return nil, err
	}
	if !plant.IsActive {
		return nil, ErrPlantNotFound
	}

	row, err := consumption.IncrementUserPlant(ctx, userID, plantID, at)
	if err != nil {
		return nil, err
	}
	firstTime := row.TimesEaten == 1

	rec := &Recording{
		User:        *user,
		Plant:       *plant,
		IsFirstTime: firstTime,
	}
	if firstTime {
		rec.PointsEarned = plant.PointsForNew
		rec.Message = plant.FirstTimeMessage
	} else {
		rec.PointsEarned = plant.PointsForRepeat
		rec.Message = plant.RepeatMessage
	}

	rec.Log = models.ConsumptionLog{
		UserID:       userID,
		PlantID:      plantID,
		PointsEarned: rec.PointsEarned,
		IsFirstTime:  firstTime,
		LoggedAt:     at,
	}
	if err := consumption.CreateLog(ctx, &rec.Log); err != nil {
		return nil, err
	}

	rec.TotalPoints, err = consumption.SumPoints(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute total points: %w", err)
	}

	return rec, nil
}
