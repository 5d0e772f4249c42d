package scores

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var mutationsShed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "statboard_score_mutations_shed_total",
	Help: "Scoreboard mutations a sink refused, by operation",
}, []string{"op"})

// MutationOp is the kind of scoreboard change recorded by a Journaled
// scoreboard.
type MutationOp uint8

const (
	OpEnsure MutationOp = iota
	OpRemove
	OpSet
	OpSetMany
)

var opNames = map[MutationOp]string{
	OpEnsure:  "ensure",
	OpRemove:  "remove",
	OpSet:     "set",
	OpSetMany: "set_many",
}

func (op MutationOp) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}

// Mutation is one scoreboard write, carrying final values so replaying it is
// idempotent.
type Mutation struct {
	Op        MutationOp
	Objective string
	Label     string
	Identity  string
	Value     int64
	Values    map[string]int64
}

// Sink receives mutations. It must not block.
type Sink interface {
	Enqueue(m Mutation) bool
}

// Tee fans each mutation out to every sink. It reports whether all of them
// accepted it.
type Tee []Sink

func (t Tee) Enqueue(m Mutation) bool {
	ok := true
	for _, s := range t {
		if !s.Enqueue(m) {
			ok = false
		}
	}
	return ok
}

// Journaled wraps a Memory scoreboard and forwards every write to a Sink.
// Reads are served from memory only.
type Journaled struct {
	*Memory
	sink Sink
}

func NewJournaled(mem *Memory, sink Sink) *Journaled {
	return &Journaled{Memory: mem, sink: sink}
}

// record forwards m. A refused mutation leaves the persisted copy stale until
// the next write of the same objective, so it is counted.
func (j *Journaled) record(m Mutation) {
	if !j.sink.Enqueue(m) {
		mutationsShed.WithLabelValues(m.Op.String()).Inc()
	}
}

func (j *Journaled) EnsureObjective(name, label string) {
	existed := j.Memory.HasObjective(name)
	j.Memory.EnsureObjective(name, label)
	if !existed {
		j.record(Mutation{Op: OpEnsure, Objective: name, Label: label})
	}
}

func (j *Journaled) RemoveObjective(name string) {
	j.Memory.RemoveObjective(name)
	j.record(Mutation{Op: OpRemove, Objective: name})
}

func (j *Journaled) SetScore(identity, name string, value int64) {
	if !j.Memory.HasObjective(name) {
		j.record(Mutation{Op: OpEnsure, Objective: name, Label: name})
	}
	j.Memory.SetScore(identity, name, value)
	j.record(Mutation{Op: OpSet, Objective: name, Identity: identity, Value: value})
}

func (j *Journaled) SetScores(name string, values map[string]int64) {
	if len(values) == 0 {
		return
	}
	if !j.Memory.HasObjective(name) {
		j.record(Mutation{Op: OpEnsure, Objective: name, Label: name})
	}
	j.Memory.SetScores(name, values)

	cp := make(map[string]int64, len(values))
	for k, v := range values {
		cp[k] = v
	}
	j.record(Mutation{Op: OpSetMany, Objective: name, Values: cp})
}
