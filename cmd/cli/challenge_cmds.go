package main

import (
	"bufio"
	"code_judge_cli/internal/app/editor"
	"code_judge_cli/internal/app/policy"
	"code_judge_cli/internal/app/query"
	"code_judge_cli/internal/client"
	"code_judge_cli/internal/domain/model"
	"code_judge_cli/internal/platform/config"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

// stringList collects a repeatable string flag in the order given.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func listFlags(fs *flag.FlagSet) (*int, *int, *string, *string, *string) {
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", config.AppConfig.DefaultPageLimit, "items per page")
	sort := fs.String("sort", "id", "sort field")
	order := fs.String("order", "desc", "asc or desc")
	search := fs.String("search", "", "search filter")
	return page, limit, sort, order, search
}

func (a *app) challenges(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("challenges", flag.ExitOnError)
	page, limit, sort, order, search := listFlags(fs)
	follow := fs.Bool("follow", false, "read search terms from stdin and refresh live")
	fs.Parse(args)

	if err := a.requireSession(ctx); err != nil {
		return err
	}

	q := model.PaginationQuery{Page: *page, Limit: *limit, Sort: *sort, Order: *order, Search: *search}

	if !*follow {
		result, err := client.FetchPage[model.Challenge](ctx, a.api, "challenge", q)
		if err != nil {
			return err
		}
		printChallenges(result)
		return nil
	}

	fetch := func(ctx context.Context, q model.PaginationQuery) (*model.PaginationResult[model.Challenge], error) {
		return client.FetchPage[model.Challenge](ctx, a.api, "challenge", q)
	}
	pager := query.NewPager(fetch, q, config.AppConfig.SearchDebounce)
	defer pager.Stop()

	go func() {
		for update := range pager.Updates() {
			if update.Err != nil {
				fmt.Fprintln(os.Stderr, "Error:", update.Err)
				continue
			}
			fmt.Printf("\n-- search %q --\n", update.Query.Search)
			printChallenges(update.Result)
		}
	}()

	pager.Refresh()
	fmt.Println("Type a search term and press enter (EOF to quit):")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		pager.SetSearch(strings.TrimSpace(scanner.Text()))
	}
	return scanner.Err()
}

func printChallenges(result *model.PaginationResult[model.Challenge]) {
	fmt.Printf("%-6s %-30s %-16s %s\n", "ID", "NAME", "AUTHOR", "STATUS")
	for _, ch := range result.Items {
		author := ""
		if ch.User != nil {
			author = ch.User.DisplayName
		}
		fmt.Printf("%-6d %-30s %-16s %s\n", ch.ChallengeID, ch.Name, author, ch.SubmissionStatus)
	}
	fmt.Printf("(%d of %d total)\n", len(result.Items), result.Total)
}

func (a *app) challenge(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("challenge", flag.ExitOnError)
	id := fs.Uint("id", 0, "challenge ID")
	fs.Parse(args)

	if err := a.requireSession(ctx); err != nil {
		return err
	}

	ch, err := a.api.GetChallenge(ctx, uint(*id))
	if err != nil {
		return err
	}
	fmt.Printf("#%d %s\n\n%s\n\nTestcases: %d\n", ch.ChallengeID, ch.Name, ch.Description, len(ch.Testcases))
	for _, tc := range ch.Testcases {
		fmt.Printf("  [%d] mem=%d time=%dms\n", tc.TestcaseID, tc.LimitMemory, tc.LimitTimeMs)
	}
	return nil
}

// export writes a challenge description to <slug>.md in the target directory.
func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	id := fs.Uint("id", 0, "challenge ID")
	dir := fs.String("dir", ".", "output directory")
	fs.Parse(args)

	if err := a.requireSession(ctx); err != nil {
		return err
	}

	ch, err := a.api.GetChallenge(ctx, uint(*id))
	if err != nil {
		return err
	}

	path := *dir + string(os.PathSeparator) + slug.Make(ch.Name) + ".md"
	content := fmt.Sprintf("# %s\n\n%s\n", ch.Name, ch.Description)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}
	fmt.Println("Wrote", path)
	return nil
}

// applyOps drives the diff editor from the command line. Adds run first, so
// --set and --delete indexes refer to the working set after added rows are
// appended.
func applyOps(ed *editor.Editor, adds, sets, deletes stringList) error {
	for _, add := range adds {
		input, output, ok := strings.Cut(add, ":")
		if !ok {
			return fmt.Errorf("bad --add %q, want input:output", add)
		}
		i := ed.AddTestcase()
		if err := ed.SetInput(i, input); err != nil {
			return err
		}
		if err := ed.SetExpectedOutput(i, output); err != nil {
			return err
		}
	}

	for _, set := range sets {
		idxStr, assign, ok := strings.Cut(set, ":")
		if !ok {
			return fmt.Errorf("bad --set %q, want index:field=value", set)
		}
		field, value, ok := strings.Cut(assign, "=")
		if !ok {
			return fmt.Errorf("bad --set %q, want index:field=value", set)
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return fmt.Errorf("bad --set index %q", idxStr)
		}
		switch field {
		case "input":
			err = ed.SetInput(idx, value)
		case "output":
			err = ed.SetExpectedOutput(idx, value)
		case "memory":
			var n uint64
			n, err = strconv.ParseUint(value, 10, 64)
			if err == nil {
				err = ed.SetLimitMemory(idx, uint(n))
			}
		case "time":
			var n uint64
			n, err = strconv.ParseUint(value, 10, 64)
			if err == nil {
				err = ed.SetLimitTimeMs(idx, uint(n))
			}
		default:
			return fmt.Errorf("unknown field %q (input, output, memory, time)", field)
		}
		if err != nil {
			return err
		}
	}

	for _, del := range deletes {
		idx, err := strconv.Atoi(del)
		if err != nil {
			return fmt.Errorf("bad --delete index %q", del)
		}
		if err := ed.MarkDeleted(idx); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) challengeCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("challenge-create", flag.ExitOnError)
	name := fs.String("name", "", "challenge name")
	description := fs.String("description", "", "challenge description")
	var adds stringList
	fs.Var(&adds, "testcase", "testcase as input:output (repeatable)")
	fs.Parse(args)

	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if !policy.CanCreateChallenge(a.session.Current().Role) {
		return fmt.Errorf("role %s may not create challenges", a.session.Current().Role)
	}

	cfg := config.AppConfig
	ed := editor.NewCreate(cfg.DefaultLimitMemory, cfg.DefaultLimitTimeMs)
	ed.SetName(*name)
	ed.SetDescription(*description)
	if err := applyOps(ed, adds, nil, nil); err != nil {
		return err
	}

	if err := ed.Submit(ctx, a.api); err != nil {
		return err
	}
	fmt.Println("Challenge created")
	return nil
}

func (a *app) challengeEdit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("challenge-edit", flag.ExitOnError)
	id := fs.Uint("id", 0, "challenge ID")
	name := fs.String("name", "", "new name (empty keeps current)")
	description := fs.String("description", "", "new description (empty keeps current)")
	var adds, sets, deletes stringList
	fs.Var(&adds, "add", "new testcase as input:output (repeatable)")
	fs.Var(&sets, "set", "edit as index:field=value (repeatable)")
	fs.Var(&deletes, "delete", "working-set index to delete (repeatable)")
	fs.Parse(args)

	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if !policy.CanEditChallenge(a.session.Current().Role) {
		return fmt.Errorf("role %s may not edit challenges", a.session.Current().Role)
	}

	ch, err := a.api.GetChallenge(ctx, uint(*id))
	if err != nil {
		return err
	}

	cfg := config.AppConfig
	ed := editor.NewEdit(ch, cfg.DefaultLimitMemory, cfg.DefaultLimitTimeMs)
	if *name != "" {
		ed.SetName(*name)
	}
	if *description != "" {
		ed.SetDescription(*description)
	}
	if err := applyOps(ed, adds, sets, deletes); err != nil {
		return err
	}

	if err := ed.Submit(ctx, a.api); err != nil {
		return err
	}
	fmt.Println("Challenge updated")
	return nil
}

func (a *app) challengeDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("challenge-delete", flag.ExitOnError)
	id := fs.Uint("id", 0, "challenge ID")
	fs.Parse(args)

	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if !policy.CanDeleteChallenge(a.session.Current().Role) {
		return fmt.Errorf("role %s may not delete challenges", a.session.Current().Role)
	}

	if err := a.api.DeleteChallenge(ctx, uint(*id)); err != nil {
		return err
	}
	fmt.Println("Challenge deleted")
	return nil
}
