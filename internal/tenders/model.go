package tenders

import "time"

// Tender is a scraped procurement opportunity tracked by the backend.
type Tender struct {
	ID              string     `json:"tender_id"`
	Name            string     `json:"tender_name"`
	ReferenceNumber string     `json:"reference_number"`
	Agency          string     `json:"agency"`
	Activity        string     `json:"activity"`
	SubmissionDate  *time.Time `json:"submission_date,omitempty"`
	DownloadedAt    *time.Time `json:"downloaded_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
