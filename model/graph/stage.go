package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// Stage is an informational pipeline-stage tag
type Stage int

const (
	StageUnknown Stage = iota
	StageIngest
	StageTransform
	StageInfer
	StageEmit
	StageControl
)

var stageNames = [...]string{
	StageUnknown:   "unknown",
	StageIngest:    "ingest",
	StageTransform: "transform",
	StageInfer:     "infer",
	StageEmit:      "emit",
	StageControl:   "control",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "stage(" + strconv.Itoa(int(s)) + ")"
	}
	return stageNames[s]
}

// ParseStage converts a stage name, case-insensitive
func ParseStage(name string) (Stage, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return StageUnknown, nil
	}
	for i, candidate := range stageNames {
		if candidate == normalized {
			return Stage(i), nil
		}
	}
	return StageUnknown, fmt.Errorf("unsupported stage: %q", name)
}

// MarshalText implements encoding.TextMarshaler
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Stage) UnmarshalText(text []byte) error {
	stage, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = stage
	return nil
}
