package syncer

import "github.com/MKhiriev/go-notes-sync/models"

// OrderSensitive returns the leading records up to, but excluding, the first
// frozen one. Later records may depend on the frozen change and must wait.
func OrderSensitive(records []models.SyncRecord) []models.SyncRecord {
	for i, rec := range records {
		if rec.Frozen {
			return records[:i]
		}
	}
	return records
}

// OrderIndependent returns every non-frozen record, keeping queue order.
func OrderIndependent(records []models.SyncRecord) []models.SyncRecord {
	out := make([]models.SyncRecord, 0, len(records))
	for _, rec := range records {
		if rec.Frozen {
			continue
		}
		out = append(out, rec)
	}
	return out
}
