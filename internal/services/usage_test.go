package services

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/apostai/engine/internal/models"
)

func newUsageService(t *testing.T) (*UsageService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.AnalysisRecord{}))

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewUsageService(db, logger), db
}

func seedUser(t *testing.T, db *gorm.DB, credits int) *models.User {
	t.Helper()
	user := &models.User{
		Email:      "punter@example.com",
		AccessCode: "ABC123",
		Credits:    credits,
		Plan:       "free",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestConsumeCreditDebitsOne(t *testing.T) {
	svc, db := newUsageService(t)
	user := seedUser(t, db, 3)

	require.NoError(t, svc.ConsumeCredit(user.ID))

	reloaded, err := models.GetUserByID(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Credits)
}

func TestConsumeCreditAtZeroBalance(t *testing.T) {
	svc, db := newUsageService(t)
	user := seedUser(t, db, 1)

	require.NoError(t, svc.ConsumeCredit(user.ID))
	err := svc.ConsumeCredit(user.ID)
	assert.ErrorIs(t, err, models.ErrNoCredits)

	// The failed debit must not push the balance negative.
	reloaded, err := models.GetUserByID(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Credits)
}

func TestConsumeCreditUnknownUser(t *testing.T) {
	svc, _ := newUsageService(t)

	err := svc.ConsumeCredit(9999)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNoCredits)
}

func TestRefundCredit(t *testing.T) {
	svc, db := newUsageService(t)
	user := seedUser(t, db, 0)

	require.NoError(t, svc.RefundCredit(user.ID))

	reloaded, err := models.GetUserByID(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Credits)
}

func TestRecordAnalysisAndHistory(t *testing.T) {
	svc, db := newUsageService(t)
	user := seedUser(t, db, 5)

	fixture := models.Fixture{
		ID:       700,
		HomeTeam: models.Team{ID: 1, Name: "Osasuna"},
		AwayTeam: models.Team{ID: 2, Name: "Getafe"},
	}
	for i := 0; i < 3; i++ {
		analysis := models.GameAnalysis{
			FixtureID:     700,
			HomeTeamScore: 52,
			AwayTeamScore: 48,
			Confidence:    float64(60 + i),
		}
		svc.RecordAnalysis(user.ID, fixture, analysis)
		// created_at ordering needs distinct timestamps on sqlite.
		time.Sleep(5 * time.Millisecond)
	}

	records, err := svc.History(user.ID, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 62.0, records[0].Confidence, "newest record comes first")
	assert.Equal(t, 700, records[0].FixtureID)
	assert.NotEmpty(t, records[0].Request)
	assert.NotEmpty(t, records[0].Response)
}

func TestHistoryDefaultLimit(t *testing.T) {
	svc, db := newUsageService(t)
	user := seedUser(t, db, 5)

	fixture := models.Fixture{ID: 700}
	for i := 0; i < 25; i++ {
		svc.RecordAnalysis(user.ID, fixture, models.GameAnalysis{Confidence: 60})
	}

	records, err := svc.History(user.ID, 0)
	require.NoError(t, err)
	assert.Len(t, records, 20)

	records, err = svc.History(user.ID, 500)
	require.NoError(t, err)
	assert.Len(t, records, 20, "out-of-range limits fall back to the default")
}

func TestHistoryScopedToUser(t *testing.T) {
	svc, db := newUsageService(t)
	alice := seedUser(t, db, 5)
	bob := &models.User{Email: "other@example.com", AccessCode: "XYZ789", Credits: 5}
	require.NoError(t, db.Create(bob).Error)

	svc.RecordAnalysis(alice.ID, models.Fixture{ID: 700}, models.GameAnalysis{})
	svc.RecordAnalysis(bob.ID, models.Fixture{ID: 701}, models.GameAnalysis{})

	records, err := svc.History(alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 700, records[0].FixtureID)
}
