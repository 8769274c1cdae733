package main

import (
	"code_judge_cli/internal/app/session"
	"code_judge_cli/internal/client"
	"code_judge_cli/internal/platform/config"
	"context"
	"fmt"
	"os"
)

const usage = `Usage: cli <command> [flags]

Account:
  register          Create an account
  login             Authenticate and persist the session token
  logout            Clear the session
  whoami            Show the active identity

Challenges:
  challenges        List challenges (use --follow for live search)
  challenge         Show one challenge
  export            Write a challenge description to a markdown file
  challenge-create  Author a new challenge with test cases
  challenge-edit    Stage and submit a batch of test-case edits
  challenge-delete  Delete a challenge

Submissions:
  submit            Submit a solution file
  submissions       List submissions
  submission        Show one graded submission

Users (admin):
  users             List users
  set-role          Change a user's role
`

// app bundles the session store and the API client. The client reads its
// bearer token through the store on every call, so a logout is visible to the
// very next request.
type app struct {
	session *session.Store
	api     *client.Client
}

func newApp() *app {
	cfg := config.AppConfig
	a := &app{}
	a.api = client.New(cfg.APIURL, func() string { return a.session.Token() })
	a.session = session.NewStore(session.NewFileTokenStore(cfg.TokenFile), a.api)
	return a
}

// requireSession restores the persisted session and fails the command when
// there is none.
func (a *app) requireSession(ctx context.Context) error {
	if err := a.session.Initialize(ctx); err != nil {
		return err
	}
	if a.session.Current() == nil {
		return fmt.Errorf("not logged in (run: cli login)")
	}
	return nil
}

func main() {
	config.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	a := newApp()
	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "register":
		err = a.register(ctx, os.Args[2:])
	case "login":
		err = a.login(ctx, os.Args[2:])
	case "logout":
		err = a.logout(ctx)
	case "whoami":
		err = a.whoami(ctx)
	case "challenges":
		err = a.challenges(ctx, os.Args[2:])
	case "challenge":
		err = a.challenge(ctx, os.Args[2:])
	case "export":
		err = a.export(ctx, os.Args[2:])
	case "challenge-create":
		err = a.challengeCreate(ctx, os.Args[2:])
	case "challenge-edit":
		err = a.challengeEdit(ctx, os.Args[2:])
	case "challenge-delete":
		err = a.challengeDelete(ctx, os.Args[2:])
	case "submit":
		err = a.submit(ctx, os.Args[2:])
	case "submissions":
		err = a.submissions(ctx, os.Args[2:])
	case "submission":
		err = a.submission(ctx, os.Args[2:])
	case "users":
		err = a.users(ctx, os.Args[2:])
	case "set-role":
		err = a.setRole(ctx, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
