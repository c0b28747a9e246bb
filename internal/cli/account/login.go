package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/moodlit/internal/cli"
	apperrors "github.com/julianstephens/moodlit/internal/errors"
	"github.com/julianstephens/moodlit/internal/identity"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/storage"
)

type LoginCmd struct {
	User  string `arg:"" help:"User id to sign in as."`
	Email string `help:"Email recorded on a newly created profile."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	user := strings.TrimSpace(c.User)
	if user == "" {
		return errors.New("user id cannot be empty")
	}
	if err := identity.Login(user); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	ctx.Identity = identity.Static(user)
	ctx.Printf("✓ Signed in as %s\n", user)

	s, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	_, err = s.Profiles.Get(context.Background())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		if _, err := s.Profiles.Create(context.Background(), c.Email); err != nil {
			return err
		}
		ctx.Println("Created your profile. Run 'moodlit profile setup' to complete it.")
		return nil
	case errors.Is(err, apperrors.ErrNetworkUnavailable):
		logger.Warn("Skipping profile check while offline", "user", user)
		ctx.Println(cli.MutedStyle.Render("Offline: your profile will be checked next time."))
		return nil
	default:
		return err
	}
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := identity.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	ctx.Identity = identity.Static("")
	ctx.Println("✓ Signed out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	user, ok := ctx.Identity.CurrentUserID()
	if !ok {
		ctx.Println("Not signed in. Use 'moodlit login <user>'.")
		return nil
	}
	ctx.Printf("Signed in as %s\n", user)

	s, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	p, err := s.Profiles.Get(context.Background())
	switch {
	case err == nil:
		if p.ProfileComplete {
			ctx.Printf("Profile: %s\n", p.Name)
		} else {
			ctx.Println("Profile: incomplete (run 'moodlit profile setup')")
		}
	case errors.Is(err, storage.ErrNotFound):
		ctx.Println("Profile: none")
	default:
		logger.Debug("Profile lookup failed", "error", err)
		ctx.Println(cli.MutedStyle.Render("Profile: unavailable"))
	}
	return nil
}
