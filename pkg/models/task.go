package models

// Priority represents the urgency level of a task assignment.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TaskRecord represents a single task assignment embedded in the instructions
// document as a fenced JSON block. Records are immutable once parsed; a later
// block with the same TaskID supersedes an earlier one.
type TaskRecord struct {
	TaskID         string   `json:"task_id"`
	AssignedTo     string   `json:"assigned_to"`
	Priority       Priority `json:"priority,omitempty"`
	EstimatedHours string   `json:"estimated_hours,omitempty"`
	Dependencies   []string `json:"dependencies,omitempty"`
	Description    string   `json:"description,omitempty"`
	Deliverables   []string `json:"deliverables,omitempty"`
	CodingStandard string   `json:"coding_standards,omitempty"`
	Context        string   `json:"context,omitempty"`
}

// Delimiter is a fixed-vocabulary control token embedded in the instructions
// document as a literal bracketed marker, e.g. "(TASK_ASSIGNED)".
type Delimiter string

const (
	DelimiterTaskAssigned      Delimiter = "TASK_ASSIGNED"
	DelimiterCommunicationOver Delimiter = "COMMUNICATION_OVER"
	DelimiterUrgent            Delimiter = "URGENT"
	DelimiterQuestion          Delimiter = "QUESTION"
	DelimiterBlocked           Delimiter = "BLOCKED"
	DelimiterTaskComplete      Delimiter = "TASK_COMPLETE"
)

// AllDelimiters lists the known delimiter vocabulary.
var AllDelimiters = []Delimiter{
	DelimiterTaskAssigned,
	DelimiterCommunicationOver,
	DelimiterUrgent,
	DelimiterQuestion,
	DelimiterBlocked,
	DelimiterTaskComplete,
}

// Token returns the literal bracketed form of the delimiter as it appears in
// the instructions document.
func (d Delimiter) Token() string {
	return "(" + string(d) + ")"
}

// CommunicationStatus is the single status derived from the set of delimiters
// present in the instructions document. It is recomputed on every parse and
// never persisted.
type CommunicationStatus string

const (
	StatusComplete        CommunicationStatus = "complete"
	StatusTaskAssigned    CommunicationStatus = "task_assigned"
	StatusUrgent          CommunicationStatus = "urgent"
	StatusQuestionPending CommunicationStatus = "question_pending"
	StatusBlocked         CommunicationStatus = "blocked"
	StatusActive          CommunicationStatus = "active"
)

// ParsedInstructions is the result of parsing the instructions document.
type ParsedInstructions struct {
	Tasks      []TaskRecord
	Delimiters map[Delimiter]bool
	LastUpdate string
	Status     CommunicationStatus
}

// TasksFor returns the tasks assigned to the given agent, in document order.
func (p ParsedInstructions) TasksFor(agentID string) []TaskRecord {
	var tasks []TaskRecord
	for _, t := range p.Tasks {
		if t.AssignedTo == agentID {
			tasks = append(tasks, t)
		}
	}
	return tasks
}
