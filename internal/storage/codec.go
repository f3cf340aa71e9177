package storage

import (
	"encoding/json"
	"errors"

	"github.com/NahomWondimu/neurobit-simulation/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeWorldSummary(s model.WorldSummary) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeWorldSummary(data []byte) (model.WorldSummary, error) {
	var summary model.WorldSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.WorldSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.WorldSummary{}, err
	}
	return summary, nil
}

func EncodeTickHistory(history []model.TickMetrics) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeTickHistory(data []byte) ([]model.TickMetrics, error) {
	var history []model.TickMetrics
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func EncodeFitnessHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeFitnessHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func EncodeGenerationDiagnostics(diagnostics []model.GenerationDiagnostics) ([]byte, error) {
	return json.Marshal(diagnostics)
}

func DecodeGenerationDiagnostics(data []byte) ([]model.GenerationDiagnostics, error) {
	var diagnostics []model.GenerationDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, err
	}
	return diagnostics, nil
}

func EncodeTopUnits(top []model.TopUnitRecord) ([]byte, error) {
	return json.Marshal(top)
}

func DecodeTopUnits(data []byte) ([]model.TopUnitRecord, error) {
	var top []model.TopUnitRecord
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	return top, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
