package match

import (
	"strings"

	"github.com/jobscout/jobscout/internal/models"
)

// PortfolioText flattens a portfolio document into one text blob for
// embedding. Field order is fixed so the same document always produces the
// same blob.
func PortfolioText(doc models.PortfolioDocument) string {
	var parts []string

	if doc.Summary != "" {
		parts = append(parts, doc.Summary)
	}
	if len(doc.Skills) > 0 {
		names := make([]string, 0, len(doc.Skills))
		for _, s := range doc.Skills {
			names = append(names, s.Name)
		}
		parts = append(parts, "Skills: "+strings.Join(names, ", "))
	}
	for _, exp := range doc.Experiences {
		parts = append(parts, exp.Company+" - "+exp.Role+": "+exp.Description)
	}
	for _, proj := range doc.Projects {
		parts = append(parts, "Project "+proj.Name+": "+proj.Description+" ["+strings.Join(proj.TechStack, ", ")+"]")
	}
	if len(doc.Keywords) > 0 {
		parts = append(parts, "Keywords: "+strings.Join(doc.Keywords, ", "))
	}

	return strings.Join(parts, "\n")
}

// JobText flattens a posting for embedding: title, company, description,
// requirements, preferred, in that order.
func JobText(job models.JobPosting) string {
	parts := []string{job.Title, job.Company}

	if job.Description != "" {
		parts = append(parts, job.Description)
	}
	if len(job.Requirements) > 0 {
		parts = append(parts, "Requirements: "+strings.Join(job.Requirements, ", "))
	}
	if len(job.Preferred) > 0 {
		parts = append(parts, "Preferred: "+strings.Join(job.Preferred, ", "))
	}

	return strings.Join(parts, "\n")
}

// CompanyJobText is JobText for a registry posting, adding location since
// company postings have no free-text body beyond the description.
func CompanyJobText(job models.CompanyJobPosting) string {
	parts := []string{job.Title}

	if job.Description != "" {
		parts = append(parts, job.Description)
	}
	if len(job.Requirements) > 0 {
		parts = append(parts, "Requirements: "+strings.Join(job.Requirements, ", "))
	}
	if len(job.Preferred) > 0 {
		parts = append(parts, "Preferred: "+strings.Join(job.Preferred, ", "))
	}
	if job.Location != "" {
		parts = append(parts, "Location: "+job.Location)
	}

	return strings.Join(parts, "\n")
}
