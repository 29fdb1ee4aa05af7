package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
)

// RiskLevel is the coarse bucket shown to moderators.
type RiskLevel string

const (
	RiskLow    RiskLevel = "baixo"
	RiskMedium RiskLevel = "medio"
	RiskHigh   RiskLevel = "alto"
)

// RiskAssessment is derived from a report on every read and never stored.
type RiskAssessment struct {
	Score    int       `json:"score"`
	Level    RiskLevel `json:"level"`
	Alerts   []string  `json:"alerts"`
	Priority int       `json:"priority"`
}

const (
	AlertHighSeverity   = "high-severity terms (violence, crime or weapons)"
	AlertMediumSeverity = "medium-severity terms (danger, suspicion or police)"
	AlertSecurity       = "security category"
	AlertTooShort       = "too short, possible spam"
	AlertTooLong        = "unusually long"
	AlertCaps           = "excessive caps"
	AlertPunctuation    = "excessive punctuation"
	AlertContact        = "contains link/phone, check for spam"
	AlertNone           = "no risk indicators"
)

const (
	weightHighSeverity   = 40
	weightMediumSeverity = 20
	weightSecurity       = 25
	weightConvivencia    = 10
	weightTooShort       = 15
	weightTooLong        = 10
	weightCaps           = 15
	weightPunctuation    = 10
	weightContact        = 5

	minBodyLength = 20
	maxBodyLength = 400
	capsRatio     = 0.3
)

// Lexicon terms match anywhere in the text, case-insensitively. "tráfico"
// hits "narcotráfico"; a moderator discards the false positives.
var HighSeverityTerms = []string{
	"assalt", "roub", "furt", "arma", "revólver", "revolver", "pistola", "tiro", "baleado",
	"faca", "facada", "esfaque", "agress", "espanc", "violência", "violencia", "sequestr",
	"homicídio", "homicidio", "assassin", "estupr", "tráfico", "trafico",
}

var MediumSeverityTerms = []string{
	"perigo", "suspeit", "polícia", "policia", "viatura", "ameaça", "ameaca", "briga",
	"invasão", "invasao", "invadi", "medo", "vandal", "droga", "arromb", "estranho",
}

// RiskScorer turns report text and category into a prioritisation signal.
// It holds only compiled patterns and is safe for concurrent use.
type RiskScorer struct {
	high        *regexp.Regexp
	medium      *regexp.Regexp
	punctuation *regexp.Regexp
	urlPattern  *regexp.Regexp
	digitRun    *regexp.Regexp
}

func NewRiskScorer() *RiskScorer {
	return &RiskScorer{
		high:        compileLexicon(HighSeverityTerms),
		medium:      compileLexicon(MediumSeverityTerms),
		punctuation: regexp.MustCompile(`[!?]{3,}`),
		urlPattern:  regexp.MustCompile(`(?i)(https?://\S+|www\.\S+)`),
		digitRun:    regexp.MustCompile(`\d{8,}`),
	}
}

func (rs *RiskScorer) Assess(text string, category models.ReportCategory) RiskAssessment {
	score := 0
	alerts := make([]string, 0, 4)

	if rs.high.MatchString(text) {
		score += weightHighSeverity
		alerts = append(alerts, AlertHighSeverity)
	} else if rs.medium.MatchString(text) {
		score += weightMediumSeverity
		alerts = append(alerts, AlertMediumSeverity)
	}

	switch category {
	case models.CategorySeguranca:
		score += weightSecurity
		alerts = append(alerts, AlertSecurity)
	case models.CategoryConvivencia:
		score += weightConvivencia
	}

	length := utf8.RuneCountInString(text)
	if length < minBodyLength {
		score += weightTooShort
		alerts = append(alerts, AlertTooShort)
	} else if length > maxBodyLength {
		score += weightTooLong
		alerts = append(alerts, AlertTooLong)
	}

	if length > minBodyLength && float64(countUpper(text))/float64(length) > capsRatio {
		score += weightCaps
		alerts = append(alerts, AlertCaps)
	}

	if rs.punctuation.MatchString(text) {
		score += weightPunctuation
		alerts = append(alerts, AlertPunctuation)
	}

	if rs.urlPattern.MatchString(text) || rs.digitRun.MatchString(text) {
		score += weightContact
		alerts = append(alerts, AlertContact)
	}

	score = max(0, min(100, score))
	level, priority := classify(score)

	if len(alerts) == 0 {
		alerts = append(alerts, AlertNone)
	}

	return RiskAssessment{
		Score:    score,
		Level:    level,
		Alerts:   alerts,
		Priority: priority,
	}
}

func classify(score int) (RiskLevel, int) {
	switch {
	case score >= 50:
		return RiskHigh, 3
	case score >= 25:
		return RiskMedium, 2
	default:
		return RiskLow, 1
	}
}

func compileLexicon(terms []string) *regexp.Regexp {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

func countUpper(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsUpper(r) {
			n++
		}
	}
	return n
}
