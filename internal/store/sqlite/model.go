package sqlite

import (
	"time"

	"stock-advisor/internal/types"
)

// RecommendationModel maps to the 'recommendations' table.
type RecommendationModel struct {
	ID                  int64     `gorm:"column:id;primaryKey"`
	RunID               string    `gorm:"column:run_id;index"`
	Symbol              string    `gorm:"column:symbol;index"`
	Action              string    `gorm:"column:action"`
	Confidence          float64   `gorm:"column:confidence"`
	Reasoning           string    `gorm:"column:reasoning"`
	RiskLevel           string    `gorm:"column:risk_level"`
	Timeframe           string    `gorm:"column:timeframe"`
	PriceTarget         float64   `gorm:"column:price_target"`
	StopLoss            float64   `gorm:"column:stop_loss"`
	MLConfidence        float64   `gorm:"column:ml_confidence"`
	NarrativeConfidence float64   `gorm:"column:narrative_confidence"`
	ConsensusScore      float64   `gorm:"column:consensus_score"`
	CreatedAt           time.Time `gorm:"column:created_at;index"`
}

func (RecommendationModel) TableName() string { return "recommendations" }

func toModel(runID string, rec types.CombinedRecommendation) RecommendationModel {
	return RecommendationModel{
		RunID:               runID,
		Symbol:              rec.Symbol,
		Action:              string(rec.Action),
		Confidence:          rec.Confidence,
		Reasoning:           rec.Reasoning,
		RiskLevel:           string(rec.RiskLevel),
		Timeframe:           string(rec.Timeframe),
		PriceTarget:         rec.PriceTarget,
		StopLoss:            rec.StopLoss,
		MLConfidence:        rec.MLConfidence,
		NarrativeConfidence: rec.NarrativeConfidence,
		ConsensusScore:      rec.ConsensusScore,
	}
}

func fromModel(m RecommendationModel) types.CombinedRecommendation {
	return types.CombinedRecommendation{
		Recommendation: types.Recommendation{
			Symbol:      m.Symbol,
			Action:      types.Action(m.Action),
			Confidence:  m.Confidence,
			Reasoning:   m.Reasoning,
			RiskLevel:   types.RiskLevel(m.RiskLevel),
			Timeframe:   types.Timeframe(m.Timeframe),
			PriceTarget: m.PriceTarget,
			StopLoss:    m.StopLoss,
		},
		MLConfidence:        m.MLConfidence,
		NarrativeConfidence: m.NarrativeConfidence,
		ConsensusScore:      m.ConsensusScore,
	}
}
