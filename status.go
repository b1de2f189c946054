package rtflow

import (
	"github.com/viant/rtflow/model/graph"
	"github.com/viant/rtflow/policy"
	"github.com/viant/rtflow/service/scheduler"
)

// Status is a point-in-time view of the control plane
type Status struct {
	GraphID       uint32            `json:"graphId"`
	Session       string            `json:"session,omitempty"`
	Operators     int               `json:"operators"`
	Channels      int               `json:"channels"`
	Graph         graph.Stats       `json:"graph"`
	Deterministic bool              `json:"deterministic"`
	Server        *scheduler.Server `json:"server,omitempty"`
	Utilization   int               `json:"utilization"`
	Scheduler     scheduler.Stats   `json:"scheduler"`
	AuditLen      int               `json:"auditLen"`
	Policy        *policy.Config    `json:"policy,omitempty"`
}
