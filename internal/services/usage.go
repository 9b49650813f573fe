package services

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/apostai/engine/internal/models"
)

// UsageService debits analysis credits and records executed analyses.
type UsageService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewUsageService creates the credit bookkeeping service.
func NewUsageService(db *gorm.DB, logger *logrus.Logger) *UsageService {
	return &UsageService{
		db:     db,
		logger: logger,
	}
}

// ConsumeCredit atomically debits one credit from the user. Returns
// models.ErrNoCredits when the balance is already zero.
func (s *UsageService) ConsumeCredit(userID uint) error {
	result := s.db.Model(&models.User{}).
		Where("id = ? AND credits > 0", userID).
		UpdateColumn("credits", gorm.Expr("credits - 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to debit credit for user %d: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing user from an empty balance.
		if _, err := models.GetUserByID(s.db, userID); err != nil {
			return err
		}
		return models.ErrNoCredits
	}

	s.logger.WithFields(logrus.Fields{
		"component": "usage",
		"user_id":   userID,
	}).Debug("Analysis credit consumed")
	return nil
}

// RefundCredit returns one credit, used when an analysis could not be
// delivered after the debit.
func (s *UsageService) RefundCredit(userID uint) error {
	result := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("credits", gorm.Expr("credits + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to refund credit for user %d: %w", userID, result.Error)
	}
	return nil
}

// RecordAnalysis persists an executed analysis for audit. Recording is
// best-effort; a storage failure must not fail the analysis response.
func (s *UsageService) RecordAnalysis(userID uint, fixture models.Fixture, analysis models.GameAnalysis) {
	request, err := json.Marshal(fixture)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to marshal analysis request for audit")
		return
	}
	response, err := json.Marshal(analysis)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to marshal analysis response for audit")
		return
	}

	record := models.AnalysisRecord{
		UserID:     userID,
		FixtureID:  fixture.ID,
		Request:    datatypes.JSON(request),
		Response:   datatypes.JSON(response),
		Confidence: analysis.Confidence,
	}
	if err := s.db.Create(&record).Error; err != nil {
		s.logger.WithFields(logrus.Fields{
			"component":  "usage",
			"user_id":    userID,
			"fixture_id": fixture.ID,
		}).Warnf("Failed to record analysis: %v", err)
	}
}

// History returns the most recent analyses for a user.
func (s *UsageService) History(userID uint, limit int) ([]models.AnalysisRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var records []models.AnalysisRecord
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis history for user %d: %w", userID, err)
	}
	return records, nil
}
