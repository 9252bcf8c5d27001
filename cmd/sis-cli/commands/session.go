package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sisassist-backend/cmd/sis-cli/globals"
	"sisassist-backend/internal/scrapers/sis"
)

func sessionOptions(g *globals.Value) []sis.Option {
	opts := g.Config.SessionOptions(g.Tel)
	if g.Dump != nil {
		opts = append(opts, sis.WithHTTPDump(g.Dump))
	}
	return opts
}

// openSession resumes the stored session of the configured user, logging in if there is none.
func openSession(ctx context.Context, g *globals.Value) (*sis.Session, error) {
	cfg := g.Config

	cookies, err := g.Store.LoadCookies(ctx, cfg.Institution, cfg.Username)
	if err != nil {
		return nil, err
	}
	opts := sessionOptions(g)
	if len(cookies) > 0 {
		opts = append(opts, sis.WithCookies(cookies))
	}
	session, err := sis.NewSession(cfg.Institution, opts...)
	if err != nil {
		return nil, err
	}
	if len(cookies) == 0 {
		err = login(ctx, g, session)
		if err != nil {
			return nil, err
		}
	}
	return session, nil
}

// login logs in with the configured credentials and stores the resulting cookies, stored
// cookies are dropped if the credentials are rejected.
func login(ctx context.Context, g *globals.Value, session *sis.Session) error {
	cfg := g.Config
	err := session.Login(ctx, cfg.Username, cfg.Password)
	if errors.Is(err, sis.ErrInvalidLogin) {
		clearErr := g.Store.ClearCookies(ctx, cfg.Institution, cfg.Username)
		if clearErr != nil {
			return errors.Join(err, fmt.Errorf("clear stored cookies: %w", clearErr))
		}
		return err
	}
	if err != nil {
		return err
	}
	return g.Store.SaveCookies(ctx, cfg.Institution, cfg.Username, session.ExportCookies())
}

// withSession runs fn with the stored session, if the server no longer accepts it fn is
// run once more after logging in again.
func withSession[T any](ctx context.Context, g *globals.Value, fn func(session *sis.Session) (T, error)) (T, error) {
	var empty T

	session, err := openSession(ctx, g)
	if err != nil {
		return empty, err
	}
	out, err := fn(session)
	if !errors.Is(err, sis.ErrInvalidSession) {
		return out, err
	}

	slog.Info("session is no longer valid, logging in again")
	err = login(ctx, g, session)
	if err != nil {
		return empty, err
	}
	return fn(session)
}

// findClass resolves a user-typed query to a class of session.
func findClass(ctx context.Context, session *sis.Session, query string) (sis.ClassSummary, error) {
	classes, err := session.Classes(ctx)
	if err != nil {
		return sis.ClassSummary{}, err
	}
	class, ok := sis.MatchClass(classes, query)
	if !ok {
		return sis.ClassSummary{}, errNoClass{query: query}
	}
	return class, nil
}

type errNoClass struct {
	query string
}

func (e errNoClass) Error() string {
	return fmt.Sprintf("no class matches %q", e.query)
}
