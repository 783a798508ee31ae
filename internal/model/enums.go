package model

// Plan is the account tier attached to every authenticated request.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPaid Plan = "paid"
)

func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPaid
}
