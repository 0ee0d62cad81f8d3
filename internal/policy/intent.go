package policy

import "strings"

// intentTrigger maps query phrases to preferred categories and, optionally,
// keywords that matched chunks must contain. Multiple triggers may fire for
// one query; their outputs are concatenated and deduplicated in order.
type intentTrigger struct {
	phrases    []string
	categories []string
	keywords   []string
}

var intentTriggers = []intentTrigger{
	{
		// Resume / portfolio / external sharing of company work.
		phrases: []string{
			"resume", "cv", "portfolio", "company project", "project in resume",
			"upload project", "put project in", "show work in resume",
		},
		categories: []string{"SECURITY_PRIVACY", "CONDUCT_ETHICS", "SOCIAL_MEDIA"},
		keywords: []string{
			"confidential", "proprietary", "information security", "social media",
			"public", "external", "blog", "website", "internet", "email",
			"post", "publish", "share", "disclose",
		},
	},
	{
		// Social media / online posting.
		phrases: []string{
			"social media", "linkedin", "facebook", "twitter", "instagram",
			"blog", "post on", "post to",
		},
		categories: []string{"SOCIAL_MEDIA", "SECURITY_PRIVACY", "CONDUCT_ETHICS"},
		keywords: []string{
			"social media", "blog", "website", "post", "internet",
			"external", "public", "email",
		},
	},
	{
		// Salary words are usually specific enough on their own.
		phrases:    []string{"salary", "ctc", "payroll", "pay day", "compensation", "bonus"},
		categories: []string{"COMPENSATION"},
	},
	{
		phrases:    []string{"leave", "holiday", "vacation", "paid time off", "pto", "maternity"},
		categories: []string{"LEAVE_POLICY"},
	},
	{
		phrases:    []string{"safety", "accident", "violence", "security", "drug", "alcohol"},
		categories: []string{"SAFETY_SECURITY"},
	},
	{
		phrases: []string{
			"behavior", "behaviour", "ethics", "code of conduct",
			"gift", "bribe", "conflict of interest",
		},
		categories: []string{"CONDUCT_ETHICS"},
	},
}

// inferIntent maps a query to preferred categories and required keywords
// using the fixed trigger table. Order is preserved, duplicates removed.
func inferIntent(query string) (categories, keywords []string) {
	q := strings.ToLower(query)

	for _, trig := range intentTriggers {
		fired := false
		for _, p := range trig.phrases {
			if strings.Contains(q, p) {
				fired = true
				break
			}
		}
		if !fired {
			continue
		}
		categories = append(categories, trig.categories...)
		keywords = append(keywords, trig.keywords...)
	}

	return dedupe(categories), dedupe(keywords)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
