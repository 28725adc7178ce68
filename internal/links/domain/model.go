package domain

import (
	"sort"
	"strings"
	"time"
)

// DefaultCategory is applied when a project is created without one.
const DefaultCategory = "Management"

// Project is one external project link. DateAdded is an RFC3339 string and
// orders the default listing newest-first. ID is assigned by whichever store
// created the record and is never reassigned.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	DateAdded   string `json:"dateAdded"`
	IsActive    bool   `json:"isActive"`
}

// NewProject carries the caller-supplied fields of a project to be created.
// The store stamps ID, DateAdded and IsActive.
type NewProject struct {
	Name        string
	Description string
	URL         string
	Category    string
}

// CategoryOrDefault returns the requested category, falling back to
// DefaultCategory when none was given.
func (n NewProject) CategoryOrDefault() string {
	if strings.TrimSpace(n.Category) == "" {
		return DefaultCategory
	}
	return n.Category
}

// ProjectPatch is a partial update. Nil fields are left untouched.
// The record's ID is immutable and not patchable.
type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	URL         *string `json:"url,omitempty"`
	Category    *string `json:"category,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// Apply merges the patch over p, preserving p.ID.
func (pt ProjectPatch) Apply(p *Project) {
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.URL != nil {
		p.URL = *pt.URL
	}
	if pt.Category != nil {
		p.Category = *pt.Category
	}
	if pt.IsActive != nil {
		p.IsActive = *pt.IsActive
	}
}

// Source identifies which store served a result. Results served from the
// local fallback instead of the remote store are degraded.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// ProjectList is a store result set together with its source.
type ProjectList struct {
	Projects []Project `json:"projects"`
	Source   Source    `json:"source"`
}

// Stats summarizes a store snapshot.
type Stats struct {
	TotalProjects   int      `json:"totalProjects"`
	ActiveProjects  int      `json:"activeProjects"`
	TotalCategories int      `json:"totalCategories"`
	Categories      []string `json:"categories"`
	LastUpdated     string   `json:"lastUpdated"`
}

// Export is the downloadable backup document.
type Export struct {
	Projects []Project      `json:"projects"`
	Metadata ExportMetadata `json:"metadata"`
}

type ExportMetadata struct {
	Version       string `json:"version"`
	ExportDate    string `json:"exportDate"`
	TotalProjects int    `json:"totalProjects"`
	Source        string `json:"source"`
}

const ExportVersion = "1.0.0"

// MigrateResult aggregates a local-to-remote migration. One failed add does
// not abort the remaining ones.
type MigrateResult struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// SortByDateAdded orders projects newest-first, matching the remote store's
// server-side ordering. Records with an unparseable DateAdded sort last.
func SortByDateAdded(projects []Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		ti, _ := time.Parse(time.RFC3339, projects[i].DateAdded)
		tj, _ := time.Parse(time.RFC3339, projects[j].DateAdded)
		return ti.After(tj)
	})
}

// SearchProjects returns the records whose name, description, category or
// URL contains term, case-insensitively. Order is preserved.
func SearchProjects(projects []Project, term string) []Project {
	t := strings.ToLower(term)
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Name), t) ||
			strings.Contains(strings.ToLower(p.Description), t) ||
			strings.Contains(strings.ToLower(p.Category), t) ||
			strings.Contains(strings.ToLower(p.URL), t) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByCategory returns the records whose category matches exactly,
// case-insensitively.
func FilterByCategory(projects []Project, category string) []Project {
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// CategoriesOf returns the sorted set of distinct categories.
func CategoriesOf(projects []Project) []string {
	seen := make(map[string]struct{}, len(projects))
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		c := p.Category
		if c == "" {
			c = DefaultCategory
		}
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// ComputeStats derives snapshot statistics at the given time.
func ComputeStats(projects []Project, now time.Time) *Stats {
	categories := CategoriesOf(projects)
	active := 0
	for _, p := range projects {
		if p.IsActive {
			active++
		}
	}
	return &Stats{
		TotalProjects:   len(projects),
		ActiveProjects:  active,
		TotalCategories: len(categories),
		Categories:      categories,
		LastUpdated:     now.UTC().Format(time.RFC3339),
	}
}
