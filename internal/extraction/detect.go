package extraction

import (
	"regexp"
	"strings"
)

// leadKeywords flag chat messages that are asking for lead extraction.
var leadKeywords = []string{
	// English
	"lead", "leads",
	"contact", "contacts",
	"company", "companies",
	"extract", "extraction",
	"find", "search",
	"email", "emails",
	"phone", "phones",
	"business", "businesses",
	"client", "clients",
	"prospect", "prospects",
	"drive", "documents",
	"vendor", "vendors",
	"supplier", "suppliers",
	"distributor", "distributors",
	"manufacturer", "manufacturers",

	// Korean
	"리드", "연락처", "컨택",
	"회사", "기업", "업체",
	"추출", "찾아", "검색",
	"이메일", "전화", "연락",
	"고객", "거래처", "클라이언트",
	"제조사", "유통사", "공급사",
	"비즈니스", "사업자",
	"문서", "드라이브",
	"정보", "데이터",

	// Japanese
	"会社", "企業", "連絡先",
	"取引先", "顧客",
}

var driveLinkRe = regexp.MustCompile(`(?i)drive\.google\.com`)

// IsLeadQuery reports whether a user message is asking for lead extraction.
func IsLeadQuery(query string) bool {
	lower := strings.ToLower(query)
	for _, keyword := range leadKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// ContainsDriveLink reports whether a message references a Google Drive URL.
func ContainsDriveLink(query string) bool {
	return driveLinkRe.MatchString(query)
}
