package models

import (
	"time"
)

// Session represents one class meeting during which attendance can be taken.
type Session struct {
	ID            int64     `json:"id" db:"id"`
	SessionNumber int       `json:"sessionNumber" db:"session_number"`
	Date          string    `json:"date" db:"date"`
	StartTime     time.Time `json:"startTime" db:"start_time"`
	EndTime       time.Time `json:"endTime" db:"end_time"`
	IsActive      bool      `json:"isActive" db:"is_active"`
	Capacity      int       `json:"capacity" db:"capacity"`
	AccessCode    string    `json:"accessCode" db:"access_code"`
	QRCode        *string   `json:"qrCode,omitempty" db:"qr_code"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`

	// AttendeeCount is derived from the attendances table, not stored.
	AttendeeCount int `json:"attendeeCount"`
}

type CreateSessionRequest struct {
	SessionNumber int       `json:"sessionNumber" binding:"required"`
	Date          string    `json:"date" binding:"required"`
	StartTime     time.Time `json:"startTime" binding:"required"`
	EndTime       time.Time `json:"endTime" binding:"required"`
	Capacity      int       `json:"capacity"`
	AccessCode    string    `json:"accessCode"`
	QRCode        string    `json:"qrCode"`
}

// SessionStats is the aggregate view served by the stats endpoint.
type SessionStats struct {
	TotalSessions    int `json:"totalSessions"`
	TotalAttendances int `json:"totalAttendances"`
	TotalStudents    int `json:"totalStudents"`
	ActiveSessions   int `json:"activeSessions"`
	SuggestedNext    int `json:"suggestedNext"`
}
