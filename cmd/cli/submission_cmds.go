package main

import (
	"code_judge_cli/internal/app/policy"
	"code_judge_cli/internal/client"
	"code_judge_cli/internal/domain/model"
	"context"
	"flag"
	"fmt"
	"os"
)

func (a *app) submit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	challengeID := fs.Uint("challenge", 0, "challenge ID")
	language := fs.String("language", "", "submission language")
	file := fs.String("file", "", "path to the solution source file")
	fs.Parse(args)

	if err := a.requireSession(ctx); err != nil {
		return err
	}

	code, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read solution: %w", err)
	}

	sub, err := a.api.Submit(ctx, model.SubmissionCreateRequest{
		ChallengeID: uint(*challengeID),
		Language:    *language,
		Code:        string(code),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Submission %d: %s\n", sub.SubmissionID, sub.Status)
	return nil
}

func (a *app) submissions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submissions", flag.ExitOnError)
	page, limit, sort, order, search := listFlags(fs)
	challengeID := fs.Uint("challenge", 0, "filter by challenge ID")
	userID := fs.Uint("user", 0, "filter by user ID")
	fs.Parse(args)

	if err := a.requireSession(ctx); err != nil {
		return err
	}

	result, err := client.FetchPage[model.Submission](ctx, a.api, "submission", model.PaginationQuery{
		Page:        *page,
		Limit:       *limit,
		Sort:        *sort,
		Order:       *order,
		Search:      *search,
		ChallengeID: uint(*challengeID),
		UserID:      uint(*userID),
	})
	if err != nil {
		return err
	}

	fmt.Printf("%-6s %-30s %-16s %-10s %s\n", "ID", "CHALLENGE", "USER", "LANGUAGE", "STATUS")
	for _, sub := range result.Items {
		name := ""
		if sub.Challenge != nil {
			name = sub.Challenge.Name
		}
		user := ""
		if sub.User != nil {
			user = sub.User.DisplayName
		}
		fmt.Printf("%-6d %-30s %-16s %-10s %s\n", sub.SubmissionID, name, user, sub.Language, sub.Status)
	}
	fmt.Printf("(%d of %d total)\n", len(result.Items), result.Total)
	return nil
}

func (a *app) submission(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submission", flag.ExitOnError)
	id := fs.Uint("id", 0, "submission ID")
	fs.Parse(args)

	if err := a.requireSession(ctx); err != nil {
		return err
	}

	sub, err := a.api.GetSubmission(ctx, uint(*id))
	if err != nil {
		return err
	}

	name := ""
	if sub.Challenge != nil {
		name = sub.Challenge.Name
	}
	fmt.Printf("Submission %d on %q: %s (%s)\n", sub.SubmissionID, name, sub.Status, sub.Language)
	for _, st := range sub.SubmissionTestcases {
		fmt.Printf("  testcase %d: %s", st.ChallengeTestcaseID, st.Status)
		if st.Note != "" {
			fmt.Printf(" (%s)", st.Note)
		}
		fmt.Println()
	}
	return nil
}

func (a *app) users(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	page, limit, sort, order, search := listFlags(fs)
	fs.Parse(args)

	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if !policy.CanViewUserList(a.session.Current().Role) {
		return fmt.Errorf("role %s may not list users", a.session.Current().Role)
	}

	result, err := client.FetchPage[model.User](ctx, a.api, "user", model.PaginationQuery{
		Page:   *page,
		Limit:  *limit,
		Sort:   *sort,
		Order:  *order,
		Search: *search,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%-6s %-20s %-30s %s\n", "ID", "NAME", "EMAIL", "ROLE")
	for _, u := range result.Items {
		fmt.Printf("%-6d %-20s %-30s %s\n", u.UserID, u.DisplayName, u.Email, u.Role)
	}
	fmt.Printf("(%d of %d total)\n", len(result.Items), result.Total)
	return nil
}

func (a *app) setRole(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-role", flag.ExitOnError)
	userID := fs.Uint("user", 0, "user ID")
	role := fs.String("role", "", "ADMIN, STAFF or USER")
	fs.Parse(args)

	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if !policy.CanManageUsers(a.session.Current().Role) {
		return fmt.Errorf("role %s may not manage users", a.session.Current().Role)
	}

	if err := a.api.UpdateUserRole(ctx, uint(*userID), *role); err != nil {
		return err
	}
	fmt.Println("Role updated")
	return nil
}
