package account

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/storage"
)

var promptProfile = huhPromptProfile

type ProfileShowCmd struct{}

func (c *ProfileShowCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	p, err := s.Profiles.Get(context.Background())
	if errors.Is(err, storage.ErrNotFound) {
		ctx.Println("No profile yet. Run 'moodlit profile setup'.")
		return nil
	}
	if err != nil {
		return err
	}

	ctx.Println(cli.HeaderStyle.Render("Profile"))
	ctx.Printf("  User:     %s\n", p.UserID)
	if p.Email != "" {
		ctx.Printf("  Email:    %s\n", p.Email)
	}
	ctx.Printf("  Name:     %s\n", orDash(p.Name))
	if p.Age > 0 {
		ctx.Printf("  Age:      %d\n", p.Age)
	}
	ctx.Printf("  Gender:   %s\n", orDash(p.Gender))
	ctx.Printf("  Complete: %v\n", p.ProfileComplete)
	ctx.Printf("  Created:  %s\n", p.CreatedAt.In(s.Location).Format("2006-01-02"))
	if len(p.Questionnaire) > 0 {
		keys := make([]string, 0, len(p.Questionnaire))
		for k := range p.Questionnaire {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ctx.Println("  Questionnaire:")
		for _, k := range keys {
			ctx.Printf("    %s: %s\n", k, p.Questionnaire[k])
		}
	}
	return nil
}

// ProfileSetupCmd completes the profile, creating it when missing. Fields
// not given as flags are prompted for.
type ProfileSetupCmd struct {
	Name   string `help:"Display name."`
	Age    int    `help:"Age in years."`
	Gender string `help:"Gender, free-form."`
}

func (c *ProfileSetupCmd) Run(ctx *cli.Context) error {
	fields := models.ProfileFields{Name: c.Name, Age: c.Age, Gender: c.Gender}
	if strings.TrimSpace(fields.Name) == "" {
		var err error
		if fields, err = promptProfile(fields); err != nil {
			return err
		}
	}

	s, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	p, err := s.Profiles.Complete(context.Background(), fields)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Profile complete. Welcome, %s!\n", p.Name)
	return nil
}

type ProfileUpdateCmd struct {
	Name   *string `help:"Display name."`
	Age    *int    `help:"Age in years."`
	Gender *string `help:"Gender, free-form."`
}

func (c *ProfileUpdateCmd) Run(ctx *cli.Context) error {
	if c.Name == nil && c.Age == nil && c.Gender == nil {
		ctx.Println("No changes specified. Use --name, --age or --gender.")
		return nil
	}

	s, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	current, err := s.Profiles.Get(context.Background())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no profile to update, run 'moodlit profile setup' first: %w", err)
		}
		return err
	}

	fields := models.ProfileFields{Name: current.Name, Age: current.Age, Gender: current.Gender}
	if c.Name != nil {
		fields.Name = *c.Name
	}
	if c.Age != nil {
		fields.Age = *c.Age
	}
	if c.Gender != nil {
		fields.Gender = *c.Gender
	}
	if _, err := s.Profiles.Update(context.Background(), fields); err != nil {
		return err
	}
	ctx.Println("✓ Profile updated")
	return nil
}

func huhPromptProfile(fields models.ProfileFields) (models.ProfileFields, error) {
	age := ""
	if fields.Age > 0 {
		age = strconv.Itoa(fields.Age)
	}
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("What should we call you?").Value(&fields.Name).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("name is required")
				}
				return nil
			}),
		huh.NewInput().Title("Age (optional)").Value(&age).
			Validate(func(s string) error {
				if s == "" {
					return nil
				}
				_, err := strconv.Atoi(s)
				return err
			}),
		huh.NewSelect[string]().Title("Gender (optional)").
			Options(huh.NewOptions("", "female", "male", "nonbinary", "prefer not to say")...).
			Value(&fields.Gender),
	))
	if err := form.Run(); err != nil {
		return fields, err
	}
	if age != "" {
		fields.Age, _ = strconv.Atoi(age)
	}
	return fields, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
