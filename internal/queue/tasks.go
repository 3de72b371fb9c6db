package queue

const (
	TypeRetentionSweep = "retention:sweep"
)

type RetentionSweepPayload struct {
	RequestedBy string `json:"requested_by"` // "scheduler" or a user id
}
