package models

import "time"

// JobPosting is the source-agnostic posting representation returned to API
// consumers. The ID carries a source prefix ("crawled-", "cjp-", "saramin-")
// so the origin table can always be recovered from the id alone.
type JobPosting struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location,omitempty"`
	Description     string   `json:"description,omitempty"`
	Requirements    []string `json:"requirements"`
	Preferred       []string `json:"preferred"`
	Salary          string   `json:"salary,omitempty"`
	URL             string   `json:"url,omitempty"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
}

// CrawledJob is a persisted row in the crawled_jobs corpus. SourceID is the
// platform-native identifier and the upsert/dedupe key.
type CrawledJob struct {
	ID             string    `json:"id" db:"id"`
	Source         string    `json:"source" db:"source"`
	SourceID       string    `json:"source_id" db:"source_id"`
	Title          string    `json:"title" db:"title"`
	Company        string    `json:"company" db:"company"`
	Location       string    `json:"location,omitempty" db:"location"`
	Description    string    `json:"description,omitempty" db:"description"`
	Requirements   []string  `json:"requirements" db:"requirements_json"`
	Preferred      []string  `json:"preferred" db:"preferred_json"`
	Salary         string    `json:"salary,omitempty" db:"salary"`
	URL            string    `json:"url,omitempty" db:"url"`
	Experience     string    `json:"experience,omitempty" db:"experience"`
	Education      string    `json:"education,omitempty" db:"education"`
	EmploymentType string    `json:"employment_type,omitempty" db:"employment_type"`
	Deadline       string    `json:"deadline,omitempty" db:"deadline"`
	TechStack      []string  `json:"tech_stack" db:"tech_stack_json"`
	CrawledAt      time.Time `json:"crawled_at" db:"crawled_at"`
	Active         bool      `json:"is_active" db:"is_active"`
}

// CompanyJobPosting is a company-registered posting supplied by the registry
// collaborator. Served with the "cjp-" id prefix.
type CompanyJobPosting struct {
	ID           int64    `json:"id" db:"id"`
	CompanyName  string   `json:"company_name" db:"company_name"`
	Title        string   `json:"title" db:"title"`
	Description  string   `json:"description,omitempty" db:"description"`
	Location     string   `json:"location,omitempty" db:"location"`
	Requirements []string `json:"requirements" db:"requirements_json"`
	Preferred    []string `json:"preferred" db:"preferred_json"`
	Salary       string   `json:"salary,omitempty" db:"salary"`
	Status       string   `json:"status" db:"status"`
	Created      int64    `json:"created" db:"created"`
}

// Portfolio is a stored candidate portfolio. The document itself is JSON
// owned by the surrounding system; this core only reads it.
type Portfolio struct {
	ID           string `json:"id" db:"id"`
	UserName     string `json:"user_name,omitempty" db:"user_name"`
	DocumentJSON string `json:"document_json" db:"document_json"`
	Public       bool   `json:"is_public" db:"is_public"`
	Updated      int64  `json:"updated" db:"updated"`
}

// PortfolioDocument is the structured view of a portfolio document used for
// text normalization and filter hints.
type PortfolioDocument struct {
	Summary            string       `json:"summary,omitempty"`
	Skills             []Skill      `json:"skills,omitempty"`
	Experiences        []Experience `json:"experiences,omitempty"`
	Projects           []Project    `json:"projects,omitempty"`
	Keywords           []string     `json:"keywords,omitempty"`
	ExperienceLevel    string       `json:"experience_level,omitempty"`
	PreferredLocations []string     `json:"preferred_locations,omitempty"`
}

type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

type Experience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Description string `json:"description,omitempty"`
}

type Project struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TechStack   []string `json:"tech_stack,omitempty"`
}

// CandidateMatch is one ranked entry from the job -> portfolio direction.
// Rank is 1-based and matches the entry's position in the sorted output.
type CandidateMatch struct {
	Rank            int      `json:"rank"`
	PortfolioID     string   `json:"portfolio_id"`
	UserName        string   `json:"user_name,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	Skills          []string `json:"skills"`
	SimilarityScore float64  `json:"similarity_score"`
}

// JobFilter carries the storage-level predicates for corpus queries. All
// fields are optional; the zero value means "active rows, newest first".
type JobFilter struct {
	Keyword    string
	Experience string
	Locations  []string
	Limit      int
	Offset     int
}
