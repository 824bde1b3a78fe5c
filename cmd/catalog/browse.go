package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-catalog-browser/browser"
	"github.com/goliatone/go-catalog-browser/catalog"
	"github.com/goliatone/go-catalog-browser/pagination"
	"github.com/goliatone/go-catalog-browser/pkg/di"
)

var (
	flagCategory    string
	flagTag         string
	flagPage        int
	flagSearch      string
	flagInteractive bool
	flagLimit       int
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through the catalog",
	Long: `Print one page of the catalog for a category or tag.

With --search the listing is served by the search cache instead of the
browsing session. With --interactive, commands are read from stdin:
n (next), p (prev), g N (page), c ID (category), t TAG (tag), r (reload),
x (random pick), q (quit).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *di.Container) error {
			out := cmd.OutOrStdout()
			if flagSearch != "" {
				return runSearch(ctx, c, out)
			}

			s := newSession(c.Browser(), out)
			if err := s.open(ctx, flagCategory, flagTag, flagPage); err != nil && !flagInteractive {
				return err
			}
			if !flagInteractive {
				return nil
			}
			return s.run(ctx, cmd.InOrStdin())
		})
	},
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Print one random resource",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *di.Container) error {
			b := c.Browser()
			if err := selectFilter(ctx, b, flagCategory, flagTag); err != nil {
				return err
			}
			r, err := b.Random(ctx)
			if errors.Is(err, catalog.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "No resources match.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderResource(1, r))
			return nil
		})
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest TERM",
	Short: "Suggest titles matching a search term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *di.Container) error {
			suggester, ok := c.Service().(catalog.Suggester)
			if !ok {
				return errors.New("source does not support suggestions")
			}
			titles, err := suggester.Suggest(ctx, args[0], flagLimit)
			if err != nil {
				return err
			}
			for _, t := range titles {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{browseCmd, randomCmd} {
		cmd.Flags().StringVar(&flagCategory, "category", "", "category id (\"all\" for every category)")
		cmd.Flags().StringVar(&flagTag, "tag", "", "tag to filter by")
		cmd.MarkFlagsMutuallyExclusive("category", "tag")
	}
	browseCmd.Flags().IntVar(&flagPage, "page", 1, "page to open")
	browseCmd.Flags().StringVar(&flagSearch, "search", "", "case-insensitive title or description search")
	browseCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "read navigation commands from stdin")
	suggestCmd.Flags().IntVar(&flagLimit, "limit", catalog.DefaultSuggestionLimit, "maximum number of suggestions")
}

// runSearch prints one page of an administrative search listing.
func runSearch(ctx context.Context, c *di.Container, out io.Writer) error {
	size := c.Config().Browser.ItemsPerPage
	filter := catalog.CategoryFilter(flagCategory)
	if flagTag != "" {
		filter = catalog.TagFilter(flagTag)
	}
	filters := filter.Filters()
	filters.Search = flagSearch

	page, err := c.Service().Fetch(ctx, catalog.Query{Page: max(flagPage, 1), PageSize: size, Filters: filters})
	if errors.Is(err, catalog.ErrRangeNotSatisfiable) {
		page, err = catalog.Page{}, nil
	}
	if err != nil {
		return err
	}

	state := pagination.State{CurrentPage: max(flagPage, 1), ItemsPerPage: size, TotalCount: page.TotalCount}
	fmt.Fprint(out, renderView(browser.View{
		Records:      page.Records,
		Filter:       filter,
		CurrentPage:  state.CurrentPage,
		TotalPages:   state.TotalPages(),
		TotalCount:   state.TotalCount,
		ItemsPerPage: size,
		HasNext:      state.HasNext(),
		HasPrev:      state.HasPrev(),
	}))
	return nil
}

func selectFilter(ctx context.Context, b *browser.Browser, category, tag string) error {
	var err error
	switch {
	case tag != "":
		_, err = b.SelectTag(ctx, tag)
	case category != "":
		_, err = b.SelectCategory(ctx, category)
	default:
		_, err = b.Start(ctx)
	}
	return err
}

// session is a line-driven renderer over a Browser.
type session struct {
	b   *browser.Browser
	out io.Writer
}

func newSession(b *browser.Browser, out io.Writer) *session {
	return &session{b: b, out: out}
}

func (s *session) show(v browser.View, err error) error {
	fmt.Fprint(s.out, renderView(v))
	return err
}

func (s *session) open(ctx context.Context, category, tag string, page int) error {
	if err := selectFilter(ctx, s.b, category, tag); err != nil {
		return s.show(s.b.View(), err)
	}
	if page > 1 {
		return s.show(s.b.GoToPage(ctx, page))
	}
	return s.show(s.b.View(), nil)
}

// run executes commands from in until EOF or quit. Load failures are shown
// and do not end the session.
func (s *session) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		quit, err := s.exec(ctx, scanner.Text())
		if quit {
			return nil
		}
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintln(s.out, errorStyle.Render(usage.Error()))
		}
	}
	return scanner.Err()
}

type usageError string

func (e usageError) Error() string { return string(e) }

func (s *session) exec(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	arg := strings.Join(fields[1:], " ")

	switch fields[0] {
	case "q", "quit", "exit":
		return true, nil
	case "n", "next":
		return false, s.show(s.b.Next(ctx))
	case "p", "prev":
		return false, s.show(s.b.Prev(ctx))
	case "r", "reload":
		return false, s.show(s.b.Reload(ctx))
	case "g", "page":
		n, convErr := strconv.Atoi(arg)
		if convErr != nil {
			return false, usageError("usage: g PAGE")
		}
		return false, s.show(s.b.GoToPage(ctx, n))
	case "c", "category":
		return false, s.show(s.b.SelectCategory(ctx, arg))
	case "t", "tag":
		if arg == "" {
			return false, usageError("usage: t TAG")
		}
		return false, s.show(s.b.SelectTag(ctx, arg))
	case "x", "random":
		r, err := s.b.Random(ctx)
		if errors.Is(err, catalog.ErrNotFound) {
			fmt.Fprintln(s.out, statusStyle.Render("no resources match"))
			return false, nil
		}
		if err != nil {
			fmt.Fprintln(s.out, errorStyle.Render("error: "+err.Error()))
			return false, err
		}
		fmt.Fprint(s.out, renderResource(1, r))
		return false, nil
	default:
		return false, usageError(fmt.Sprintf("unknown command %q", fields[0]))
	}
}
