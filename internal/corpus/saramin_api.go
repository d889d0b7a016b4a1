package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jobscout/jobscout/internal/models"
)

const saraminAPITimeout = 15 * time.Second

// SaraminAPISource fetches postings live from the Saramin open API. It is
// the lowest-priority source and only consulted when the persisted corpus is
// sparse. An empty access key disables the source gracefully: Fetch returns
// (nil, nil) and the merge simply moves on.
type SaraminAPISource struct {
	AccessKey string
	BaseURL   string
	client    *http.Client
}

func NewSaraminAPISource(accessKey, baseURL string) *SaraminAPISource {
	if baseURL == "" {
		baseURL = "https://oapi.saramin.co.kr/job-search"
	}
	return &SaraminAPISource{
		AccessKey: accessKey,
		BaseURL:   baseURL,
		client:    &http.Client{Timeout: saraminAPITimeout},
	}
}

func (s *SaraminAPISource) Name() string { return "saramin-api" }

// saraminResponse mirrors the open API JSON shape: results live under
// jobs.job and a single result may arrive as an object instead of an array.
type saraminResponse struct {
	Jobs struct {
		Job json.RawMessage `json:"job"`
	} `json:"jobs"`
}

type saraminJob struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Position struct {
		Title      string      `json:"title"`
		Location   saraminName `json:"location"`
		JobCode    saraminName `json:"job-code"`
		JobType    saraminName `json:"job-type"`
		Industry   saraminName `json:"industry"`
		Experience saraminName `json:"experience"`
		Education  saraminName `json:"education-level"`
	} `json:"position"`
	Company struct {
		Detail struct {
			Name string `json:"name"`
		} `json:"detail"`
	} `json:"company"`
	Salary saraminName `json:"salary"`
}

type saraminName struct {
	Name string `json:"name"`
}

func (s *SaraminAPISource) Fetch(ctx context.Context, f models.JobFilter) ([]models.JobPosting, error) {
	if s.AccessKey == "" {
		return nil, nil
	}

	count := f.Limit
	if count <= 0 || count > 100 {
		count = 20
	}

	params := url.Values{}
	params.Set("access-key", s.AccessKey)
	params.Set("count", strconv.Itoa(count))
	params.Set("sort", "pd") // latest first
	if f.Keyword != "" {
		params.Set("keywords", f.Keyword)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("saramin api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("saramin api read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("saramin api returned %d", resp.StatusCode)
	}

	return parseSaraminResponse(body)
}

func parseSaraminResponse(body []byte) ([]models.JobPosting, error) {
	var parsed saraminResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("saramin api decode: %w", err)
	}
	if len(parsed.Jobs.Job) == 0 {
		return nil, nil
	}

	var items []saraminJob
	if err := json.Unmarshal(parsed.Jobs.Job, &items); err != nil {
		// single result arrives as an object, not an array
		var single saraminJob
		if err := json.Unmarshal(parsed.Jobs.Job, &single); err != nil {
			return nil, fmt.Errorf("saramin api decode jobs: %w", err)
		}
		items = []saraminJob{single}
	}

	out := make([]models.JobPosting, 0, len(items))
	for _, item := range items {
		id := item.ID
		if id == "" {
			id = uuid.NewString()[:8]
		}

		var requirements []string
		if item.Position.Experience.Name != "" {
			requirements = append(requirements, "경력: "+item.Position.Experience.Name)
		}
		if item.Position.Education.Name != "" {
			requirements = append(requirements, "학력: "+item.Position.Education.Name)
		}

		var preferred []string
		if item.Position.JobType.Name != "" {
			preferred = append(preferred, item.Position.JobType.Name)
		}
		if item.Position.Industry.Name != "" {
			preferred = append(preferred, item.Position.Industry.Name)
		}

		out = append(out, models.JobPosting{
			ID:           "saramin-" + id,
			Title:        item.Position.Title,
			Company:      item.Company.Detail.Name,
			Location:     item.Position.Location.Name,
			Description:  item.Position.JobCode.Name,
			Requirements: requirements,
			Preferred:    preferred,
			Salary:       item.Salary.Name,
			URL:          item.URL,
		})
	}
	return out, nil
}
