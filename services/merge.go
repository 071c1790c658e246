package services

import (
	"fmt"

	apperrors "vapor/api/models/errors"
)

// MergeAnnotations folds two positionally-aligned record lists into
// one document per variant. Local fields come first, remote fields
// overlay them, so on a key collision the remote value wins. The
// two lists must pair up index by index: a length mismatch or an
// hgvs_id disagreement at any index means the sources drifted out
// of alignment, which is never silently resolved.
func MergeAnnotations(local []map[string]interface{}, remote []map[string]interface{}) ([]map[string]interface{}, error) {
	if len(local) != len(remote) {
		return nil, fmt.Errorf("%w: local has %d records, remote has %d",
			apperrors.ErrIdentifierMismatch, len(local), len(remote))
	}

	merged := make([]map[string]interface{}, 0, len(local))
	for i := range local {
		localId, localOk := local[i]["hgvs_id"].(string)
		remoteId, remoteOk := remote[i]["hgvs_id"].(string)
		if !localOk || !remoteOk {
			return nil, fmt.Errorf("%w: record %d is missing an hgvs_id", apperrors.ErrIdentifierMismatch, i)
		}
		if localId != remoteId {
			return nil, &apperrors.IdentifierMismatchError{Index: i, Local: localId, Remote: remoteId}
		}

		document := make(map[string]interface{}, len(local[i])+len(remote[i]))
		for key, value := range local[i] {
			document[key] = value
		}
		for key, value := range remote[i] {
			document[key] = value
		}
		merged = append(merged, document)
	}

	return merged, nil
}
