// Command reader is a terminal front end for the news feed: it fetches
// headlines, keeps guest votes and preferences on the local device, and
// after sign-in replays them to the backend.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/katemdaly/newspulse/backend/internal/apiclient"
	"github.com/katemdaly/newspulse/backend/internal/feed"
	"github.com/katemdaly/newspulse/backend/internal/guest"
	"github.com/katemdaly/newspulse/backend/internal/models"
	"github.com/katemdaly/newspulse/backend/internal/newsapi"
)

type reader struct {
	state feed.State
	news  *newsapi.Client
	api   *apiclient.Client
	votes *guest.VoteLedger
	prefs *guest.Preferences
	sync  *guest.Syncer
	store *guest.Storage
	log   *slog.Logger
	out   *bufio.Writer
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	backendURL := os.Getenv("BACKEND_URL")
	if backendURL == "" {
		backendURL = "http://localhost:3002"
	}

	storagePath := os.Getenv("READER_STORAGE")
	if storagePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot determine home directory:", err)
			os.Exit(1)
		}
		storagePath = filepath.Join(home, ".newspulse", "guest.json")
	}

	storage := guest.NewStorage(storagePath)
	votes := guest.NewVoteLedger(storage)
	prefs := guest.NewPreferences(storage)
	api := apiclient.New(backendURL)

	r := &reader{
		state: feed.NewState(),
		news:  newsapi.New(os.Getenv("NEWS_API_KEY"), log),
		api:   api,
		votes: votes,
		prefs: prefs,
		sync:  guest.NewSyncer(api, votes, prefs, log),
		store: storage,
		log:   log,
		out:   bufio.NewWriter(os.Stdout),
	}

	if err := r.run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "reader:", err)
		os.Exit(1)
	}
}

func (r *reader) run(ctx context.Context) error {
	r.restorePreferences()

	if token, ok := guest.Session(r.store); ok {
		r.api.SetToken(token)
		if _, err := r.api.Me(ctx); err == nil {
			r.state = feed.Apply(r.state, feed.SignedIn{})
		} else {
			r.api.SetToken("")
			_ = guest.ClearSession(r.store)
		}
	}

	r.load(ctx, "")
	r.render()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(r.out, "> ")
		r.out.Flush()
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "quit", "q", "exit":
			r.out.Flush()
			return nil
		case "help", "h":
			r.printHelp()
		case "reload":
			r.load(ctx, "")
			r.render()
		case "search":
			r.load(ctx, arg)
			r.render()
		case "up", "down":
			r.vote(ctx, arg, models.VoteKind(cmd+"vote"))
			r.render()
		case "filter":
			r.setFilter(ctx, arg)
			r.render()
		case "sort":
			r.setSort(ctx, arg)
			r.render()
		case "page":
			if n, err := strconv.Atoi(arg); err == nil {
				r.state = feed.Apply(r.state, feed.PageChanged{Page: n})
			}
			r.render()
		case "next":
			r.state = feed.Apply(r.state, feed.PageChanged{Page: r.state.Page + 1})
			r.render()
		case "prev":
			r.state = feed.Apply(r.state, feed.PageChanged{Page: r.state.Page - 1})
			r.render()
		case "perpage":
			r.setPerPage(ctx, arg)
			r.render()
		case "login":
			r.login(ctx, arg)
		case "logout":
			r.logout(ctx)
		case "stats":
			r.printStats(ctx)
		default:
			fmt.Fprintf(r.out, "unknown command %q; try help\n", cmd)
		}
		r.out.Flush()
	}
}

// restorePreferences seeds the session state from stored preferences,
// remote when signed in and local otherwise.
func (r *reader) restorePreferences() {
	all, err := r.prefs.All()
	if err != nil {
		r.log.Warn("loading stored preferences", "error", err)
		return
	}

	var p models.Pagination
	if raw, ok := all[models.PrefPagination]; ok && json.Unmarshal(raw, &p) == nil {
		r.state = feed.Apply(r.state, feed.ItemsPerPageChanged{PerPage: p.ItemsPerPage})
		r.state = feed.Apply(r.state, feed.PageChanged{Page: p.CurrentPage})
	}
	var f models.Filters
	if raw, ok := all[models.PrefFilters]; ok && json.Unmarshal(raw, &f) == nil {
		r.state = feed.Apply(r.state, feed.FilterChanged{
			Filter:      f.DateFilter,
			CustomStart: f.CustomStartDate,
			CustomEnd:   f.CustomEndDate,
		})
		r.state = feed.Apply(r.state, feed.SortChanged{Order: f.SortOrder})
	}
}

func (r *reader) load(ctx context.Context, query string) {
	var res newsapi.Result
	if query == "" {
		res = r.news.TopHeadlines(ctx, newsapi.HeadlinesParams{PageSize: 100})
	} else {
		res = r.news.Search(ctx, newsapi.SearchParams{Query: query, PageSize: 100})
	}
	r.state = feed.Apply(r.state, feed.ArticlesLoaded{Articles: res.Articles, DemoMode: res.Demo})
	r.mergeVotes(ctx)
}

// mergeVotes pulls vote data for the loaded articles: the shared tallies
// from the backend plus the viewer's own votes, local or remote.
func (r *reader) mergeVotes(ctx context.Context) {
	merged := map[string]feed.VoteInfo{}

	if all, err := r.api.AllVotes(ctx); err == nil {
		for id, entry := range all {
			info := feed.VoteInfo{Upvotes: entry.Upvotes, Downvotes: entry.Downvotes, Score: entry.Score}
			if entry.UserVote != nil {
				info.UserVote = string(*entry.UserVote)
			}
			merged[id] = info
		}
	} else {
		r.log.Warn("fetching shared votes", "error", err)
	}

	if !r.state.SignedIn {
		userVotes, err := r.votes.UserVotes()
		if err != nil {
			r.log.Warn("reading local votes", "error", err)
			userVotes = nil
		}
		for id, kind := range userVotes {
			counts, _ := r.votes.CountsFor(id)
			info := merged[id]
			info.Upvotes += counts.Upvotes
			info.Downvotes += counts.Downvotes
			info.Score = info.Upvotes - info.Downvotes
			info.UserVote = string(kind)
			merged[id] = info
		}
	}

	r.state = feed.Apply(r.state, feed.VotesMerged{Votes: merged})
}

// vote resolves the numbered entry on the visible page and casts the vote,
// against the backend when signed in and the local ledger otherwise.
func (r *reader) vote(ctx context.Context, arg string, kind models.VoteKind) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintln(r.out, "usage: up <n> / down <n>")
		return
	}
	page := r.state.Visible(time.Now())
	if n < 1 || n > len(page.Entries) {
		fmt.Fprintln(r.out, "no such entry on this page")
		return
	}
	articleID := page.Entries[n-1].Article.ID()

	var info feed.VoteInfo
	if r.state.SignedIn {
		res, err := r.api.Vote(ctx, articleID, kind)
		if err != nil {
			fmt.Fprintln(r.out, "vote failed:", err)
			return
		}
		info = feed.VoteInfo{Upvotes: res.Votes.Upvotes, Downvotes: res.Votes.Downvotes, Score: res.Votes.Score}
		if res.UserVote != nil {
			info.UserVote = string(*res.UserVote)
		}
	} else {
		counts, err := r.votes.Vote(articleID, kind)
		if err != nil {
			fmt.Fprintln(r.out, "vote failed:", err)
			return
		}
		info = feed.VoteInfo{Upvotes: counts.Upvotes, Downvotes: counts.Downvotes, Score: counts.Score}
		if userVote, _ := r.votes.UserVote(articleID); userVote != nil {
			info.UserVote = string(*userVote)
		}
	}
	r.state = feed.Apply(r.state, feed.VoteRecorded{ArticleID: articleID, Votes: info})
}

func (r *reader) setFilter(ctx context.Context, arg string) {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		counts := feed.FilterCounts(r.state.Articles, time.Now())
		for _, f := range []string{feed.FilterAll, feed.FilterToday, feed.FilterYesterday, feed.FilterWeek, feed.FilterMonth} {
			fmt.Fprintf(r.out, "  %-10s %d articles\n", f, counts[f])
		}
		fmt.Fprintln(r.out, "usage: filter all|today|yesterday|week|month|custom [start end]")
		return
	}
	ev := feed.FilterChanged{Filter: fields[0]}
	if fields[0] == feed.FilterCustom {
		if len(fields) != 3 {
			fmt.Fprintln(r.out, "usage: filter custom 2025-01-01 2025-01-31")
			return
		}
		ev.CustomStart, ev.CustomEnd = fields[1], fields[2]
	}
	r.state = feed.Apply(r.state, ev)
	r.savePrefs(ctx)
}

func (r *reader) setSort(ctx context.Context, arg string) {
	if arg != feed.SortNewest && arg != feed.SortOldest {
		fmt.Fprintln(r.out, "usage: sort newest|oldest")
		return
	}
	r.state = feed.Apply(r.state, feed.SortChanged{Order: arg})
	r.savePrefs(ctx)
}

func (r *reader) setPerPage(ctx context.Context, arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		fmt.Fprintln(r.out, "usage: perpage <n>")
		return
	}
	r.state = feed.Apply(r.state, feed.ItemsPerPageChanged{PerPage: n})
	r.savePrefs(ctx)
}

// savePrefs persists the current view settings, to the backend when signed
// in and locally otherwise. Backend failures are logged, not fatal; the
// view already changed.
func (r *reader) savePrefs(ctx context.Context) {
	pagination := models.Pagination{ItemsPerPage: r.state.PerPage, CurrentPage: r.state.Page}
	filters := models.Filters{
		DateFilter:      r.state.Filter,
		CustomStartDate: r.state.CustomStart,
		CustomEndDate:   r.state.CustomEnd,
		SortOrder:       r.state.Sort,
	}

	if r.state.SignedIn {
		if err := r.api.SetPreference(ctx, models.PrefPagination, pagination); err != nil {
			r.log.Warn("saving pagination preference", "error", err)
		}
		if err := r.api.SetPreference(ctx, models.PrefFilters, filters); err != nil {
			r.log.Warn("saving filters preference", "error", err)
		}
		return
	}
	if err := r.prefs.Set(models.PrefPagination, pagination); err != nil {
		r.log.Warn("saving local pagination", "error", err)
	}
	if err := r.prefs.Set(models.PrefFilters, filters); err != nil {
		r.log.Warn("saving local filters", "error", err)
	}
}

// login exchanges a Google ID token for a backend session, then pushes the
// guest activity up.
func (r *reader) login(ctx context.Context, credential string) {
	if credential == "" {
		fmt.Fprintln(r.out, "usage: login <google-id-token>")
		return
	}

	res, err := r.api.GoogleLogin(ctx, credential)
	if err != nil {
		fmt.Fprintln(r.out, "login failed:", err)
		return
	}
	if err := guest.SaveSession(r.store, res.Token, res.ExpiresAt); err != nil {
		r.log.Warn("persisting session", "error", err)
	}
	fmt.Fprintf(r.out, "signed in as %s <%s>\n", res.User.Name, res.User.Email)

	report, err := r.sync.Run(ctx)
	if err != nil {
		fmt.Fprintln(r.out, "sync failed:", err)
	} else if len(report.Votes) > 0 {
		fmt.Fprintf(r.out, "synced %d/%d guest votes\n", report.Succeeded(), len(report.Votes))
	}

	r.state = feed.Apply(r.state, feed.SignedIn{})
	r.mergeVotes(ctx)
	r.render()
}

func (r *reader) logout(ctx context.Context) {
	if err := r.api.Logout(ctx); err != nil {
		r.log.Warn("backend logout", "error", err)
	}
	r.api.SetToken("")
	if err := guest.ClearSession(r.store); err != nil {
		r.log.Warn("clearing stored session", "error", err)
	}
	r.state = feed.Apply(r.state, feed.SignedOut{})
	r.mergeVotes(ctx)
	r.render()
}

func (r *reader) printStats(ctx context.Context) {
	if r.state.SignedIn {
		stats, err := r.api.Stats(ctx)
		if err != nil {
			fmt.Fprintln(r.out, "stats unavailable:", err)
			return
		}
		fmt.Fprintf(r.out, "community: %d voters, %d votes across %d articles\n",
			stats.TotalUsers, stats.TotalVotes, stats.TotalArticlesVoted)
		return
	}
	articles, total, mine, err := r.votes.Stats()
	if err != nil {
		fmt.Fprintln(r.out, "stats unavailable:", err)
		return
	}
	fmt.Fprintf(r.out, "this device: %d votes of yours, %d total across %d articles\n", mine, total, articles)
}

func (r *reader) render() {
	page := r.state.Visible(time.Now())

	if r.state.DemoMode {
		fmt.Fprintln(r.out, "[demo data - set NEWS_API_KEY for live headlines]")
	}
	if page.TotalItems == 0 {
		fmt.Fprintln(r.out, "no articles match the current filter")
		return
	}

	now := time.Now()
	for i, entry := range page.Entries {
		marker := " "
		switch entry.Votes.UserVote {
		case string(models.Upvote):
			marker = "^"
		case string(models.Downvote):
			marker = "v"
		}
		fmt.Fprintf(r.out, "%2d. [%+d]%s %s (%s, %s)\n",
			i+1, entry.Votes.Score, marker, entry.Article.Title,
			entry.Article.Source, feed.FormatRelative(entry.Article.PublishedAt, now))
	}
	fmt.Fprintf(r.out, "page %d/%d - %d articles - filter %s, sort %s\n",
		page.CurrentPage, page.TotalPages, page.TotalItems, r.state.Filter, r.state.Sort)
}

func (r *reader) printHelp() {
	fmt.Fprint(r.out, `commands:
  reload                  fetch headlines again
  search <query>          search articles
  up <n> / down <n>       vote on a listed article
  filter <range>          all|today|yesterday|week|month|custom <start> <end>
  sort newest|oldest      change ordering
  page <n> / next / prev  move through pages
  perpage <n>             items per page
  login <id-token>        sign in with a Google ID token and sync
  logout                  sign out
  stats                   voting stats
  quit                    exit
`)
}
