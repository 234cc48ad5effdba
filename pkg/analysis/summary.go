package analysis

import (
	"fmt"
	"html"

	"github.com/elonfeng/trendpulse/pkg/trend"
)

const summaryList = `<ul style="list-style-type: disc; padding-left: 20px; text-align: left;">`

// Summary is the locally computed quick analysis.
type Summary struct {
	SuccessScore int    `json:"successScore"`
	Summary      string `json:"summary"`
}

func summarize(t trend.Trend, lang string, r trend.Rand) Summary {
	score := trend.SuccessScore(t.HotnessScore, r)

	title := t.Title(lang)
	if title == "" {
		title = "N/A"
	}
	title = html.EscapeString(title)
	category := html.EscapeString(t.Category)

	var body string
	if lang == trend.LangVI {
		sentiment := "neutral"
		if score > 75 {
			sentiment = "tích cực"
		}
		growth := "tăng trưởng vừa phải"
		if score > 80 {
			growth = "tiềm năng tăng trưởng cao"
		}
		body = fmt.Sprintf(summaryList+
			`<li><strong>Tin tức:</strong> "%s" (Lĩnh vực: %s).</li>`+
			`<li><strong>Điểm liên quan:</strong> <strong>%d%%</strong> (tâm lý %s).</li>`+
			`<li><strong>Triển vọng:</strong> Tin tức này cho thấy %s.</li></ul>`,
			title, category, score, sentiment, growth)
	} else {
		sentiment := "neutral"
		if score > 75 {
			sentiment = "positive"
		}
		growth := "moderate growth"
		if score > 80 {
			growth = "high potential for growth"
		}
		body = fmt.Sprintf(summaryList+
			`<li><strong>News:</strong> "%s" (Domain: %s).</li>`+
			`<li><strong>Relevance Score:</strong> <strong>%d%%</strong> (%s sentiment).</li>`+
			`<li><strong>Outlook:</strong> This news shows %s.</li></ul>`,
			title, category, score, sentiment, growth)
	}
	return Summary{SuccessScore: score, Summary: body}
}
