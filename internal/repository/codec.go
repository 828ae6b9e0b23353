package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
)

// EncodeSnapshot serializes a snapshot. Nil collections encode as empty arrays.
func EncodeSnapshot(snapshot *model.Snapshot) ([]byte, error) {
	out := snapshot.Clone()

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return data, nil
}

// DecodeSnapshot parses stored data. The returned snapshot is never nil; ok
// is false when the data was present but could not be parsed.
func DecodeSnapshot(data []byte) (snapshot *model.Snapshot, ok bool) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.EmptySnapshot(), true
	}

	var decoded model.Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		return model.EmptySnapshot(), false
	}

	if decoded.Events == nil {
		decoded.Events = []model.Event{}
	}

	if decoded.Crew == nil {
		decoded.Crew = []model.CrewMember{}
	}

	return &decoded, true
}

func decodeOrEmpty(logger *slog.Logger, source string, data []byte) *model.Snapshot {
	snapshot, ok := DecodeSnapshot(data)
	if !ok {
		logger.Warn("stored snapshot is malformed, starting empty",
			slog.String("source", source),
			slog.Int("bytes", len(data)),
		)
	}

	return snapshot
}
