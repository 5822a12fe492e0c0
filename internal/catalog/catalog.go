// Package catalog loads plant, badge and user seed data from YAML and
// upserts it into the database.
package catalog

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"

	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/internal/repository"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

// File is the seed file layout.
type File struct {
	Plants []PlantSeed `yaml:"plants"`
	Badges []BadgeSeed `yaml:"badges"`
	Users  []UserSeed  `yaml:"users"`
}

// PlantSeed describes one plant.
type PlantSeed struct {
	Name             string `yaml:"name"`
	PointsForNew     int    `yaml:"points_for_new"`
	PointsForRepeat  int    `yaml:"points_for_repeat"`
	FirstTimeMessage string `yaml:"first_time_message"`
	RepeatMessage    string `yaml:"repeat_message"`
	Active           *bool  `yaml:"active"` // defaults to true
}

// BadgeSeed describes one badge.
type BadgeSeed struct {
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	Emoji          string `yaml:"emoji"`
	PointsRequired int    `yaml:"points_required"`
	SortOrder      int    `yaml:"sort_order"`
	Active         *bool  `yaml:"active"` // defaults to true
}

// UserSeed describes a demo user. Zero goals take the engine defaults.
type UserSeed struct {
	Username    string `yaml:"username"`
	WeeklyGoal  int    `yaml:"weekly_goal"`
	MonthlyGoal int    `yaml:"monthly_goal"`
}

// Defaults are the goals applied to users that do not set their own.
type Defaults struct {
	WeeklyGoal  int
	MonthlyGoal int
}

// Result counts the rows a seed run upserted.
type Result struct {
	Plants int
	Badges int
	Users  int
}

var sanitizer = bluemonday.StrictPolicy()

// sanitize strips markup and surrounding whitespace from free text. The
// policy entity-encodes what it keeps; the text is stored decoded and
// escaped again by whatever renders it.
func sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(s)))
}

// Load reads and validates a seed file.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes and validates a seed document. Unknown keys are rejected so
// typos do not silently drop data.
func Parse(r io.Reader) (*File, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	file.sanitize()
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &file, nil
}

func (f *File) sanitize() {
	for i := range f.Plants {
		p := &f.Plants[i]
		p.Name = sanitize(p.Name)
		p.FirstTimeMessage = sanitize(p.FirstTimeMessage)
		p.RepeatMessage = sanitize(p.RepeatMessage)
	}
	for i := range f.Badges {
		b := &f.Badges[i]
		b.Name = sanitize(b.Name)
		b.Description = sanitize(b.Description)
		b.Emoji = sanitize(b.Emoji)
	}
	for i := range f.Users {
		f.Users[i].Username = sanitize(f.Users[i].Username)
	}
}

// Validate checks names and point values.
func (f *File) Validate() error {
	seen := make(map[string]bool)
	for _, p := range f.Plants {
		if p.Name == "" {
			return fmt.Errorf("plant without a name")
		}
		if seen["plant:"+p.Name] {
			return fmt.Errorf("duplicate plant %q", p.Name)
		}
		seen["plant:"+p.Name] = true
		if p.PointsForNew < 0 || p.PointsForRepeat < 0 {
			return fmt.Errorf("plant %q has negative points", p.Name)
		}
	}
	for _, b := range f.Badges {
		if b.Name == "" {
			return fmt.Errorf("badge without a name")
		}
		if seen["badge:"+b.Name] {
			return fmt.Errorf("duplicate badge %q", b.Name)
		}
		seen["badge:"+b.Name] = true
		if b.PointsRequired < 0 {
			return fmt.Errorf("badge %q has a negative threshold", b.Name)
		}
	}
	for _, u := range f.Users {
		if u.Username == "" {
			return fmt.Errorf("user without a username")
		}
		if u.WeeklyGoal < 0 || u.MonthlyGoal < 0 {
			return fmt.Errorf("user %q has a negative goal", u.Username)
		}
	}
	return nil
}

func active(b *bool) bool {
	return b == nil || *b
}

// Seed upserts the whole file in one transaction. Rows are matched by name,
// so running it twice is harmless; logs and unlocks are never touched.
func Seed(ctx context.Context, db *repository.DB, file *File, defaults Defaults, log *logger.Logger) (*Result, error) {
	result := &Result{}
	err := db.Transaction(ctx, func(tx *repository.DB) error {
		plants := repository.NewPlantRepository(tx)
		for _, p := range file.Plants {
			plant := &models.Plant{
				Name:             p.Name,
				PointsForNew:     p.PointsForNew,
				PointsForRepeat:  p.PointsForRepeat,
				FirstTimeMessage: p.FirstTimeMessage,
				RepeatMessage:    p.RepeatMessage,
				IsActive:         active(p.Active),
			}
			if err := plants.UpsertByName(ctx, plant); err != nil {
				return err
			}
			result.Plants++
		}

		badges := repository.NewBadgeRepository(tx)
		for _, b := range file.Badges {
			badge := &models.Badge{
				Name:           b.Name,
				Description:    b.Description,
				Emoji:          b.Emoji,
				PointsRequired: b.PointsRequired,
				SortOrder:      b.SortOrder,
				IsActive:       active(b.Active),
			}
			if err := badges.UpsertByName(ctx, badge); err != nil {
				return err
			}
			result.Badges++
		}

		users := repository.NewUserRepository(tx)
		for _, u := range file.Users {
			user := &models.User{
				Username:    u.Username,
				WeeklyGoal:  u.WeeklyGoal,
				MonthlyGoal: u.MonthlyGoal,
			}
			if user.WeeklyGoal == 0 {
				user.WeeklyGoal = defaults.WeeklyGoal
			}
			if user.MonthlyGoal == 0 {
				user.MonthlyGoal = defaults.MonthlyGoal
			}
			if err := users.UpsertByUsername(ctx, user); err != nil {
				return err
			}
			result.Users++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}

	log.Info().
		Int("plants", result.Plants).
		Int("badges", result.Badges).
		Int("users", result.Users).
		Msg("Catalog seeded")

	return result, nil
}
