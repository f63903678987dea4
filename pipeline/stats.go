// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import "sync"

// AgentStatSnapshot is a point-in-time view of one agent's counters.
type AgentStatSnapshot struct {
	Processed     int     `json:"processed"`
	Errors        int     `json:"errors"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// AgentStats tracks per-agent processing counters. Safe for concurrent use.
type AgentStats struct {
	mu     sync.Mutex
	agents map[string]*agentCounters
}

type agentCounters struct {
	processed       int
	errors          int
	totalConfidence float64
}

// NewAgentStats creates an empty stats tracker.
func NewAgentStats() *AgentStats {
	return &AgentStats{
		agents: make(map[string]*agentCounters),
	}
}

// Record counts a successful extraction with its confidence.
func (s *AgentStats) Record(agent string, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.counters(agent)
	c.processed++
	c.totalConfidence += confidence
}

// RecordError counts a failed extraction.
func (s *AgentStats) RecordError(agent string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters(agent).errors++
}

// Snapshot returns a copy of the current counters per agent.
func (s *AgentStats) Snapshot() map[string]AgentStatSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]AgentStatSnapshot, len(s.agents))
	for name, c := range s.agents {
		avg := 0.0
		if c.processed > 0 {
			avg = c.totalConfidence / float64(c.processed)
		}
		snapshot[name] = AgentStatSnapshot{
			Processed:     c.processed,
			Errors:        c.errors,
			AvgConfidence: avg,
		}
	}
	return snapshot
}

func (s *AgentStats) counters(agent string) *agentCounters {
	c, ok := s.agents[agent]
	if !ok {
		c = &agentCounters{}
		s.agents[agent] = c
	}
	return c
}
