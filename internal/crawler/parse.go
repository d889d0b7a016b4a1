package crawler

import (
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// RawJob is one posting as parsed from the job site, before persistence.
// Summary fields come from the search-result card; Description/Requirements/
// Preferred are filled (or overwritten) by the optional detail fetch.
type RawJob struct {
	SourceID       string
	Title          string
	Company        string
	Location       string
	Experience     string
	Education      string
	EmploymentType string
	Deadline       string
	Salary         string
	URL            string
	TechStack      []string
	Snippet        string
	Description    string
	Requirements   []string
	Preferred      []string
}

// JobDetail holds the fields extractable from a posting's detail page.
// Missing sections stay zero-valued; the caller keeps summary data instead.
type JobDetail struct {
	Description  string
	Requirements []string
	Preferred    []string
	Salary       string
	TechStack    []string
}

var (
	recIdxRe     = regexp.MustCompile(`rec_idx=(\d+)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	bulletRe     = regexp.MustCompile(`[·•\-\n]`)
)

const maxDescriptionLen = 5000

// ParseSearchResults extracts posting summaries from a search-result page.
// Cards whose expected structure is missing (no title link, no company) are
// skipped; a page that parses to zero cards is simply an empty result.
func ParseSearchResults(r io.Reader, baseURL string) ([]RawJob, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var jobs []RawJob
	for _, card := range findAll(doc, byClass("item_recruit")) {
		titleWrap := findFirst(card, byClass("job_tit"))
		if titleWrap == nil {
			continue
		}
		link := findFirst(titleWrap, byTag("a"))
		if link == nil {
			continue
		}

		href := attrVal(link, "href")
		sourceID := ""
		if m := recIdxRe.FindStringSubmatch(href); m != nil {
			sourceID = "saramin-" + m[1]
		} else {
			sourceID = "saramin-" + uuid.NewString()[:12]
		}

		detailURL := ""
		if href != "" {
			detailURL = joinURL(baseURL, href)
		}

		title := cleanText(nodeText(link))
		company := cleanText(nodeText(findFirst(card, byClass("corp_name"))))
		if title == "" || company == "" {
			continue
		}

		// condition badges appear in a fixed order: location, experience,
		// education, employment type
		var location, experience, education, employmentType string
		if cond := findFirst(card, byClass("job_condition")); cond != nil {
			spans := findAll(cond, byTag("span"))
			if len(spans) > 0 {
				location = cleanText(nodeText(spans[0]))
			}
			if len(spans) > 1 {
				experience = cleanText(nodeText(spans[1]))
			}
			if len(spans) > 2 {
				education = cleanText(nodeText(spans[2]))
			}
			if len(spans) > 3 {
				employmentType = cleanText(nodeText(spans[3]))
			}
		}

		salary := cleanText(nodeText(findFirst(card, byClass("job_salary"))))

		deadline := ""
		if dateWrap := findFirst(card, byClass("job_date")); dateWrap != nil {
			deadline = cleanText(nodeText(findFirst(dateWrap, byClass("date"))))
		}

		var techStack []string
		snippet := ""
		if sector := findFirst(card, byClass("job_sector")); sector != nil {
			for _, tag := range findAll(sector, byAnyTag("a", "span")) {
				if t := cleanText(nodeText(tag)); t != "" {
					techStack = append(techStack, t)
				}
			}
			snippet = cleanText(nodeText(sector))
		}

		jobs = append(jobs, RawJob{
			SourceID:       sourceID,
			Title:          title,
			Company:        company,
			Location:       location,
			Experience:     experience,
			Education:      education,
			EmploymentType: employmentType,
			Deadline:       deadline,
			Salary:         salary,
			URL:            detailURL,
			TechStack:      techStack,
			Snippet:        snippet,
		})
	}

	return jobs, nil
}

// ParseDetailPage extracts the full JD from a posting detail page. The site
// uses several body containers across templates, so candidates are tried in
// order; fields whose sections are absent stay blank rather than failing.
func ParseDetailPage(r io.Reader) JobDetail {
	var detail JobDetail

	doc, err := html.Parse(r)
	if err != nil {
		return detail
	}

	for _, pred := range []func(*html.Node) bool{
		byClass("jv_detail"),
		byID("job_description"),
		byClass("job_description"),
	} {
		if block := findFirst(doc, pred); block != nil {
			if text := cleanText(nodeText(block)); len([]rune(text)) > 50 {
				detail.Description = clip(text, maxDescriptionLen)
				break
			}
		}
	}
	if detail.Description == "" {
		if block := findFirst(doc, byClass("jv_cont")); block != nil {
			detail.Description = clip(cleanText(nodeText(block)), maxDescriptionLen)
		}
	}

	// structured dl/dt/dd pairs under the summary area; sections can nest, so
	// dedupe dl nodes by identity
	seen := make(map[*html.Node]struct{})
	for _, section := range findAll(doc, byAnyClass("jv_summary", "cont")) {
		for _, dl := range findAll(section, byTag("dl")) {
			if _, dup := seen[dl]; dup {
				continue
			}
			seen[dl] = struct{}{}
			dt := cleanText(nodeText(findFirst(dl, byTag("dt"))))
			dd := cleanText(nodeText(findFirst(dl, byTag("dd"))))
			if dt == "" || dd == "" {
				continue
			}

			lowerDt := strings.ToLower(dt)
			switch {
			case containsAny(lowerDt, "자격", "필수", "경력", "요건", "지원자격"):
				detail.Requirements = append(detail.Requirements, splitItems(dd)...)
			case containsAny(lowerDt, "우대", "preferred"):
				detail.Preferred = append(detail.Preferred, splitItems(dd)...)
			case containsAny(lowerDt, "급여", "연봉"):
				detail.Salary = dd
			}
		}
	}

	for _, wrap := range findAll(doc, byAnyClass("job_skill", "skill_list")) {
		for _, span := range findAll(wrap, byTag("span")) {
			if t := cleanText(nodeText(span)); t != "" {
				detail.TechStack = append(detail.TechStack, t)
			}
		}
	}

	return detail
}

// ── node helpers ──────────────────────────────────────────────

func byTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

func byAnyTag(tags ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, t := range tags {
			if n.Data == t {
				return true
			}
		}
		return false
	}
}

func byClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && hasClass(n, class)
	}
}

func byAnyClass(classes ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, c := range classes {
			if hasClass(n, c) {
				return true
			}
		}
		return false
	}
}

func byID(id string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && attrVal(n, "id") == id
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attrVal(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// findAll returns every node in the subtree matching pred, depth first.
func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if pred(node) {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// nodeText concatenates all text nodes in the subtree.
func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// cleanText collapses whitespace runs and trims.
func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}

func splitItems(s string) []string {
	var out []string
	for _, part := range bulletRe.Split(s, -1) {
		if part = cleanText(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func joinURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return strings.TrimSuffix(base, "/") + href
}
