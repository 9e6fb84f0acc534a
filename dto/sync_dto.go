package dto

import (
	"time"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/usecases"
)

type SyncStatusDto struct {
	Status      string `json:"status"`
	QueueLength int    `json:"queueLength"`
}

func AdaptSyncStatusDto(s usecases.SyncStatus) SyncStatusDto {
	return SyncStatusDto{
		Status:      string(s.Status),
		QueueLength: s.QueueLength,
	}
}

type SetSyncStatusBody struct {
	Status string `json:"status" binding:"required,oneof=connecting connected disconnected error offline"`
}

type ReplayResultDto struct {
	Processed int  `json:"processed"`
	Remaining int  `json:"remaining"`
	Halted    bool `json:"halted"`
	Skipped   bool `json:"skipped"`
}

func AdaptReplayResultDto(r models.ReplayResult) ReplayResultDto {
	return ReplayResultDto{
		Processed: r.Processed,
		Remaining: r.Remaining,
		Halted:    r.Halted,
		Skipped:   r.Skipped,
	}
}

type SyncActionDto struct {
	Id        string    `json:"id"`
	Type      string    `json:"type"`
	FormId    string    `json:"formId,omitempty"`
	UserId    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func AdaptSyncActionDto(a models.SyncAction) SyncActionDto {
	return SyncActionDto{
		Id:        a.Id,
		Type:      string(a.Type),
		FormId:    a.FormId,
		UserId:    string(a.UserId),
		Timestamp: a.Timestamp,
	}
}

type SubmissionBody struct {
	Values map[string]any `json:"values" binding:"required"`
}

type SubmissionDto struct {
	Id          string         `json:"id"`
	FormId      string         `json:"formId"`
	Values      map[string]any `json:"values"`
	SubmittedBy string         `json:"submittedBy"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func AdaptSubmissionDto(s models.Submission) SubmissionDto {
	return SubmissionDto{
		Id:          s.Id,
		FormId:      s.FormId,
		Values:      s.Values,
		SubmittedBy: string(s.SubmittedBy),
		CreatedAt:   s.CreatedAt,
	}
}
