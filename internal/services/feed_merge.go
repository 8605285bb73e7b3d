package services

import (
	"sort"

	"github.com/gatherly-app/gatherly/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MergeRecords reconciles a client's held feed window with a freshly fetched
// delta. Records are keyed by id; incoming wins on collision, which lets the
// server correct a record by re-emitting the same id. The result is sorted
// newest first. Pure and idempotent: merging the same delta twice yields the
// same result.
func MergeRecords(current, incoming []models.ActivityRecord) []models.ActivityRecord {
	byID := make(map[primitive.ObjectID]models.ActivityRecord, len(current)+len(incoming))
	for _, rec := range current {
		byID[rec.ID] = rec
	}
	for _, rec := range incoming {
		byID[rec.ID] = rec
	}

	merged := make([]models.ActivityRecord, 0, len(byID))
	for _, rec := range byID {
		merged = append(merged, rec)
	}
	sortRecordsDesc(merged)
	return merged
}

// StageRefresh filters a fetched delta down to the records the client does
// not already hold. An empty result means nothing new to surface.
func StageRefresh(known, fetched []models.ActivityRecord) []models.ActivityRecord {
	seen := make(map[primitive.ObjectID]bool, len(known))
	for _, rec := range known {
		seen[rec.ID] = true
	}

	staged := make([]models.ActivityRecord, 0, len(fetched))
	for _, rec := range fetched {
		if !seen[rec.ID] {
			staged = append(staged, rec)
		}
	}
	sortRecordsDesc(staged)
	return staged
}

// sortRecordsDesc orders newest first, breaking timestamp ties by id so the
// ordering is deterministic for a fixed input set.
func sortRecordsDesc(records []models.ActivityRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.After(records[j].Timestamp)
		}
		return records[i].ID.Hex() > records[j].ID.Hex()
	})
}
