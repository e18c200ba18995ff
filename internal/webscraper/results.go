package webscraper

import (
	"fmt"
	"io"

	"github.com/rodaine/table"
	"github.com/rs/zerolog"

	"github.com/yingtu35/link-verifier/pkg/domain"
)

// LogReporter writes outcomes to the run log: healthy links at info level,
// unhealthy ones at error level.
type LogReporter struct {
	logger zerolog.Logger
}

func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(o Outcome) {
	ev := r.logger.Info()
	if !o.Healthy {
		ev = r.logger.Error()
	}
	branchDomain, _ := domain.GetDomain(o.BranchURL)
	ev.Str("page", o.PageURL).
		Str("branch", o.BranchURL).
		Str("link", o.LinkURL).
		Str("text", o.LinkText).
		Str("final_url", o.FinalURL).
		Int("status", o.StatusCode).
		Str("description", o.Description).
		Int("depth", o.Depth).
		Bool("external", !domain.IsSameDomain(branchDomain, o.FinalURL)).
		Msg(o.String())
}

// MultiReporter fans every outcome out to each reporter in turn.
type MultiReporter []Reporter

func (m MultiReporter) Report(o Outcome) {
	for _, r := range m {
		r.Report(o)
	}
}

// Page holds the unhealthy links found on one page.
type Page struct {
	DeadLinkCount int
	DeadLinks     []Outcome
}

// Results collects unhealthy outcomes grouped by the page they were found on.
type Results struct {
	pages map[string]*Page
	order []string
}

func NewResults() *Results {
	return &Results{pages: make(map[string]*Page)}
}

func (r *Results) Report(o Outcome) {
	if o.Healthy {
		return
	}
	r.addDeadLink(o)
}

func (r *Results) addDeadLink(o Outcome) {
	page, ok := r.pages[o.PageURL]
	if !ok {
		page = &Page{DeadLinks: []Outcome{}}
		r.pages[o.PageURL] = page
		r.order = append(r.order, o.PageURL)
	}
	page.DeadLinkCount++
	page.DeadLinks = append(page.DeadLinks, o)
}

// Pages returns the page URLs with dead links in the order they were found.
func (r *Results) Pages() []string {
	return append([]string(nil), r.order...)
}

func (r *Results) Page(url string) (*Page, bool) {
	p, ok := r.pages[url]
	return p, ok
}

func (r *Results) Len() int {
	return len(r.order)
}

// PrintResults writes a table of dead links per page to w.
func (r *Results) PrintResults(w io.Writer) {
	if len(r.order) == 0 {
		fmt.Fprintln(w, "No dead links found")
		return
	}
	tbl := table.New("Page", "Counts", "Dead Links", "Status").WithWriter(w)
	for _, url := range r.order {
		page := r.pages[url]
		for i, o := range page.DeadLinks {
			status := fmt.Sprintf("%d (%s)", o.StatusCode, o.Description)
			if i == 0 {
				tbl.AddRow(url, page.DeadLinkCount, o.FinalURL, status)
			} else {
				tbl.AddRow("", "", o.FinalURL, status)
			}
		}
	}
	tbl.Print()
}
