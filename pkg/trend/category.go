package trend

import "strings"

// Category labels that carry special meaning in normalization.
const (
	// CategoryGeneral on a feed means "infer from the source name".
	CategoryGeneral = "General"
	// CategoryNews is returned when no keyword matches.
	CategoryNews = "News"
	// CategorySearch marks articles returned by a keyword search.
	CategorySearch = "Search"
)

type categoryRule struct {
	category string
	keywords []string
}

// categoryRules is evaluated in order; the first matching category wins.
// The order is user-visible and must not be changed.
var categoryRules = []categoryRule{
	{"Technology", []string{"tech", "digital", "wired", "gadget", "ai", "crypto", "computing", "khoa-hoc", "so-hoa", "công nghệ"}},
	{"Business", []string{"business", "finance", "market", "economic", "wsj", "bloomberg", "ft.com", "cafef", "kinh doanh"}},
	{"Sports", []string{"sport", "espn", "football", "nba", "f1", "the-thao", "thể thao"}},
	{"Entertainment", []string{"entertainment", "showbiz", "movies", "music", "hollywood", "variety", "giai-tri", "culture", "phim"}},
	{"Science", []string{"science", "space", "nature", "research", "khảo cổ"}},
	{"Health", []string{"health", "medical", "wellness", "pharma", "suckhoedoisong", "sức khỏe"}},
	{"Politics", []string{"politic", "government", "white house", "thoi-su", "chính trị"}},
	{"Cars", []string{"car", "auto", "driver", "oto-xe-may", "ô tô"}},
	{"Fashion", []string{"fashion", "vogue", "elle", "bazaar", "style", "thời trang"}},
	{"Travel", []string{"travel", "lonely planet", "du-lich", "du lịch"}},
	{"Food", []string{"food", "bon appetit", "recipe", "am-thuc", "ẩm thực"}},
	{"Gaming", []string{"game", "ign", "esports", "gamek"}},
	{"Education", []string{"education", "higher-ed", "giao-duc", "giáo dục"}},
	{"Family", []string{"family", "parents", "afamily", "gia đình"}},
	{"Lifestyle", []string{"lifestyle", "life", "đời sống"}},
	{"Beauty", []string{"beauty", "allure", "cosmetics", "làm đẹp"}},
	{"Cybersecurity", []string{"cybersecurity", "security", "an ninh mạng"}},
}

// InferCategory maps a publisher or feed name to a category label.
func InferCategory(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return CategoryNews
	}
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return CategoryNews
}
