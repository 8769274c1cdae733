package main

import (
	"code_judge_cli/internal/app/session"
	"code_judge_cli/internal/common/security"
	"code_judge_cli/internal/domain/model"
	"context"
	"flag"
	"fmt"
)

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	displayName := fs.String("displayname", "", "public display name")
	fs.Parse(args)

	res, err := a.api.Register(ctx, model.RegisterRequest{
		Email:       *email,
		Password:    *password,
		DisplayName: *displayName,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s (user %d). Now run: cli login\n", res.DisplayName, res.UserID)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	res, err := a.api.Login(ctx, model.LoginRequest{Email: *email, Password: *password})
	if err != nil {
		return err
	}

	if err := a.session.Login(session.Identity{
		AccessToken: res.Token,
		DisplayName: res.DisplayName,
		Email:       res.Email,
		Role:        res.Role,
	}); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	fmt.Printf("Logged in as %s (%s)\n", res.DisplayName, res.Role)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	a.session.Logout()
	fmt.Println("Logged out")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	id := a.session.Current()
	fmt.Printf("%s <%s> role=%s\n", id.DisplayName, id.Email, id.Role)
	if exp, err := security.TokenExpiry(id.AccessToken); err == nil {
		fmt.Printf("Token expires %s\n", exp.Format("2006-01-02 15:04:05"))
	}
	return nil
}
