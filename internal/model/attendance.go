package model

import "time"

// Session is a scheduled meeting of a program.
type Session struct {
	ID        int64     `json:"id"`
	ProgramID int64     `json:"program_id"`
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
}

type AttendanceStatus string

// Persisted values, keep stable.
const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// ParseAttendanceStatus reports whether s is a known attendance status.
func ParseAttendanceStatus(s string) (AttendanceStatus, bool) {
	switch AttendanceStatus(s) {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusExcused:
		return AttendanceStatus(s), true
	}
	return "", false
}

// AttendanceRecord is unique per (account, session); later marks overwrite.
type AttendanceRecord struct {
	ID        int64            `json:"id"`
	AccountID int64            `json:"account_id"`
	SessionID int64            `json:"session_id"`
	Status    AttendanceStatus `json:"status"`
	MarkedBy  int64            `json:"marked_by"`
	MarkedAt  time.Time        `json:"marked_at"`
}
