package match

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jobscout/jobscout/internal/models"
)

// MatchCandidates ranks public portfolios against a company job posting —
// the mirror direction of Recommend. The job's normalized text is the query
// vector and the portfolios form the pool. Candidates whose document
// flattens to an empty string are skipped: there is nothing to embed.
func (m *Matcher) MatchCandidates(ctx context.Context, job models.CompanyJobPosting, portfolios []models.Portfolio, limit int) ([]models.CandidateMatch, error) {
	if limit <= 0 {
		limit = 20
	}
	if len(portfolios) == 0 {
		return []models.CandidateMatch{}, nil
	}

	type candidate struct {
		portfolio models.Portfolio
		doc       models.PortfolioDocument
	}

	candidates := make([]candidate, 0, len(portfolios))
	texts := make([]string, 0, len(portfolios))
	for _, pf := range portfolios {
		var doc models.PortfolioDocument
		if err := json.Unmarshal([]byte(pf.DocumentJSON), &doc); err != nil {
			m.logger.Debug("skipping portfolio with malformed document", "portfolio_id", pf.ID, "err", err)
			continue
		}
		text := PortfolioText(doc)
		if strings.TrimSpace(text) == "" {
			continue
		}
		candidates = append(candidates, candidate{portfolio: pf, doc: doc})
		texts = append(texts, text)
	}
	if len(candidates) == 0 {
		return []models.CandidateMatch{}, nil
	}

	if !m.embedder.Available() {
		m.logger.Warn("embedding backend unavailable, returning unranked candidates")
		out := make([]models.CandidateMatch, 0, limit)
		for i, c := range candidates {
			if i >= limit {
				break
			}
			out = append(out, candidateItem(i+1, c.portfolio, c.doc, 0.0))
		}
		return out, nil
	}

	batch := make([]string, 0, len(texts)+1)
	batch = append(batch, CompanyJobText(job))
	batch = append(batch, texts...)

	vectors, err := m.embedder.EmbedBatch(ctx, batch)
	if err != nil {
		m.logger.Error("batch embedding failed, returning unranked candidates", "err", err)
		out := make([]models.CandidateMatch, 0, limit)
		for i, c := range candidates {
			if i >= limit {
				break
			}
			out = append(out, candidateItem(i+1, c.portfolio, c.doc, 0.0))
		}
		return out, nil
	}

	ranked := RankBySimilarity(vectors[0], candidates, vectors[1:], limit)

	out := make([]models.CandidateMatch, 0, len(ranked))
	for i, r := range ranked {
		out = append(out, candidateItem(i+1, r.Item.portfolio, r.Item.doc, RoundScore(r.Score)))
	}
	return out, nil
}

// candidateItem shapes one ranked entry, capping the skill preview at 10.
func candidateItem(rank int, pf models.Portfolio, doc models.PortfolioDocument, score float64) models.CandidateMatch {
	skills := make([]string, 0, len(doc.Skills))
	for _, s := range doc.Skills {
		skills = append(skills, s.Name)
	}
	if len(skills) > 10 {
		skills = skills[:10]
	}

	return models.CandidateMatch{
		Rank:            rank,
		PortfolioID:     pf.ID,
		UserName:        pf.UserName,
		Summary:         doc.Summary,
		Skills:          skills,
		SimilarityScore: score,
	}
}
