package jobpage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const (
	greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"
	leverBaseURL      = "https://api.lever.co/v0/postings"
)

type boardKind int

const (
	boardGreenhouse boardKind = iota + 1
	boardLever
)

// boardPosting identifies a single posting on a hosted job board.
type boardPosting struct {
	kind    boardKind
	company string // Greenhouse board token or Lever company slug
	id      string
}

// greenhouseJob is the single-job response of the Greenhouse boards API.
type greenhouseJob struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type leverList struct {
	Text    string `json:"text"`
	Content string `json:"content"`
}

// leverJob is the single-posting response of the Lever postings API.
type leverJob struct {
	Text             string      `json:"text"`
	DescriptionPlain string      `json:"descriptionPlain"`
	Lists            []leverList `json:"lists"`
	AdditionalPlain  string      `json:"additionalPlain"`
}

// matchBoard recognizes posting URLs such as
// https://boards.greenhouse.io/acme/jobs/123 and https://jobs.lever.co/acme/<uuid>.
func matchBoard(u *url.URL) (boardPosting, bool) {
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	host := strings.ToLower(u.Hostname())

	switch host {
	case "boards.greenhouse.io", "job-boards.greenhouse.io":
		if len(parts) >= 3 && parts[1] == "jobs" && parts[0] != "" && parts[2] != "" {
			return boardPosting{kind: boardGreenhouse, company: parts[0], id: parts[2]}, true
		}
	case "jobs.lever.co":
		if len(parts) >= 2 && parts[0] != "" && parts[1] != "" {
			return boardPosting{kind: boardLever, company: parts[0], id: parts[1]}, true
		}
	}
	return boardPosting{}, false
}

func (f *Fetcher) fetchBoard(ctx context.Context, p boardPosting) (string, error) {
	switch p.kind {
	case boardGreenhouse:
		return f.fetchGreenhouse(ctx, p)
	case boardLever:
		return f.fetchLever(ctx, p)
	}
	return "", fmt.Errorf("unknown job board %d", p.kind)
}

func (f *Fetcher) fetchGreenhouse(ctx context.Context, p boardPosting) (string, error) {
	target := fmt.Sprintf("%s/%s/jobs/%s", f.greenhouseBase, url.PathEscape(p.company), url.PathEscape(p.id))
	body, err := f.get(ctx, target, "application/json")
	if err != nil {
		return "", err
	}

	var job greenhouseJob
	if err := json.Unmarshal(body, &job); err != nil {
		return "", fmt.Errorf("greenhouse posting %s/%s: %w", p.company, p.id, err)
	}

	return joinSections(job.Title, htmlToText(job.Content)), nil
}

func (f *Fetcher) fetchLever(ctx context.Context, p boardPosting) (string, error) {
	target := fmt.Sprintf("%s/%s/%s", f.leverBase, url.PathEscape(p.company), url.PathEscape(p.id))
	body, err := f.get(ctx, target, "application/json")
	if err != nil {
		return "", err
	}

	var job leverJob
	if err := json.Unmarshal(body, &job); err != nil {
		return "", fmt.Errorf("lever posting %s/%s: %w", p.company, p.id, err)
	}

	sections := []string{job.Text, cleanWhitespace(job.DescriptionPlain)}
	for _, list := range job.Lists {
		sections = append(sections, joinSections(list.Text, htmlToText("<ul>"+list.Content+"</ul>")))
	}
	sections = append(sections, cleanWhitespace(job.AdditionalPlain))
	return joinSections(sections...), nil
}

// joinSections joins the non-empty sections with blank lines.
func joinSections(sections ...string) string {
	kept := make([]string, 0, len(sections))
	for _, s := range sections {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "\n\n")
}
