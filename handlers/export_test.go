package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-backend/models"
)

func TestBuildRosterCSV(t *testing.T) {
	session := &models.Session{SessionNumber: 5, Date: "2026-09-01"}
	checkedInAt := time.Date(2026, 9, 1, 10, 5, 0, 0, time.UTC)

	studentID := "S-100"
	email := "alice@example.com"
	students := map[string]models.Student{
		"0xabc": {
			WalletAddress: "0xabc",
			Name:          `Alice "Ace" Kim`,
			StudentID:     &studentID,
			Email:         &email,
		},
	}

	attendances := []models.Attendance{
		{WalletAddress: "0xABC", TokenID: "42", CreatedAt: checkedInAt},
		{WalletAddress: "0xdef", TokenID: "43", CreatedAt: checkedInAt.Add(time.Minute)},
	}

	csv := buildRosterCSV(session, attendances, students)
	lines := strings.Split(csv, "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, `"sessionNumber","sessionDate","walletAddress","studentName","studentId","email","tokenId","timestamp"`, lines[0])

	// Profile matched case-insensitively, internal quotes doubled.
	assert.Equal(t, `"5","2026-09-01","0xABC","Alice ""Ace"" Kim","S-100","alice@example.com","42","2026-09-01T10:05:00.000Z"`, lines[1])

	// No profile: name, id and email stay empty.
	assert.Equal(t, `"5","2026-09-01","0xdef","","","","43","2026-09-01T10:06:00.000Z"`, lines[2])
}

func TestBuildRosterCSVEmptyRoster(t *testing.T) {
	session := &models.Session{SessionNumber: 9, Date: "2026-10-01"}

	csv := buildRosterCSV(session, nil, nil)
	assert.NotContains(t, csv, "\n", "header only")
	assert.True(t, strings.HasPrefix(csv, `"sessionNumber"`))
}
