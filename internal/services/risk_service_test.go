package services

import (
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

var testScorer = NewRiskScorer()

func assess(text string, category models.ReportCategory) RiskAssessment {
	return testScorer.Assess(text, category)
}

func TestAssess_ShortText(t *testing.T) {
	a := assess("ABC", models.CategoryOutros)

	assert.Equal(t, 15, a.Score)
	assert.Equal(t, RiskLow, a.Level)
	assert.Equal(t, 1, a.Priority)
	assert.Equal(t, []string{AlertTooShort}, a.Alerts)
}

func TestAssess_HighRiskSecurityReport(t *testing.T) {
	a := assess("ASSALTO NA RUA AGORA!!!", models.CategorySeguranca)

	assert.Equal(t, 90, a.Score)
	assert.Equal(t, RiskHigh, a.Level)
	assert.Equal(t, 3, a.Priority)
	assert.Equal(t, []string{AlertHighSeverity, AlertSecurity, AlertCaps, AlertPunctuation}, a.Alerts)
}

func TestAssess_HighSeverityDominatesMedium(t *testing.T) {
	both := assess("vi um assalto e a polícia chegou depois de muito tempo", models.CategoryOutros)
	high := assess("vi um assalto e ninguém chegou depois de muito tempo", models.CategoryOutros)

	assert.Equal(t, high.Score, both.Score)
	assert.Contains(t, both.Alerts, AlertHighSeverity)
	assert.NotContains(t, both.Alerts, AlertMediumSeverity)
}

func TestAssess_MediumSeverity(t *testing.T) {
	a := assess("tem uma pessoa suspeita rondando a praça desde cedo", models.CategoryOutros)

	assert.Equal(t, weightMediumSeverity, a.Score)
	assert.Equal(t, []string{AlertMediumSeverity}, a.Alerts)
	assert.Equal(t, RiskLow, a.Level)
}

func TestAssess_LexiconMatchesInsideWords(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"prefix", "homem armado na entrada do mercado do bairro"},
		{"embedded", "denúncia de narcotráfico na esquina do bairro"},
		{"embedded stem", "vi um caso de autoagressão perto da escola ontem"},
		{"mixed case", "NarcoTRÁFICO perto da praça central do bairro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assess(tt.text, models.CategoryOutros)
			assert.Equal(t, weightHighSeverity, a.Score)
			assert.Equal(t, []string{AlertHighSeverity}, a.Alerts)
		})
	}
}

func TestAssess_NarcotraficoScoresHighSeverity(t *testing.T) {
	a := assess("denúncia de narcotráfico na esquina do bairro", models.CategoryOutros)

	assert.Equal(t, weightHighSeverity, a.Score)
	assert.Equal(t, []string{AlertHighSeverity}, a.Alerts)
	assert.Equal(t, RiskMedium, a.Level)
}

func TestAssess_ConvivenciaAddsScoreWithoutAlert(t *testing.T) {
	a := assess("vizinho deixa o carro na calçada todos os dias", models.CategoryConvivencia)

	assert.Equal(t, weightConvivencia, a.Score)
	assert.Equal(t, []string{AlertNone}, a.Alerts)
}

func TestAssess_ContactAndLength(t *testing.T) {
	a := assess("promoção imperdível acesse www.exemplo.com ou ligue 11987654321 agora", models.CategoryOutros)
	assert.Contains(t, a.Alerts, AlertContact)

	long := strings.Repeat("buraco enorme na rua ", 25)
	a = assess(long, models.CategoryInfraestrutura)
	assert.Contains(t, a.Alerts, AlertTooLong)
}

func TestAssess_Invariants(t *testing.T) {
	texts := []string{
		"",
		"ABC",
		"ASSALTO ROUBO TIRO FACADA ARMA!!!! www.x.com 123456789",
		strings.Repeat("!", 500),
		"lâmpada queimada na rua das flores desde semana passada",
	}
	for _, text := range texts {
		for _, cat := range models.ReportCategories {
			a := assess(text, cat)
			assert.NotEmpty(t, a.Alerts)
			assert.GreaterOrEqual(t, a.Score, 0)
			assert.LessOrEqual(t, a.Score, 100)

			switch {
			case a.Score >= 50:
				assert.Equal(t, 3, a.Priority)
				assert.Equal(t, RiskHigh, a.Level)
			case a.Score >= 25:
				assert.Equal(t, 2, a.Priority)
				assert.Equal(t, RiskMedium, a.Level)
			default:
				assert.Equal(t, 1, a.Priority)
				assert.Equal(t, RiskLow, a.Level)
			}
		}
	}
}

func TestAssess_Deterministic(t *testing.T) {
	text := "Briga na praça com gritaria, alguém chame a polícia???"
	assert.Equal(t, assess(text, models.CategorySeguranca), assess(text, models.CategorySeguranca))
}
