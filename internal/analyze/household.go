package analyze

// Householder resolves a record to the household it belongs to.
type Householder interface {
	// HouseholdID returns "" when the record has no known household.
	HouseholdID(recID string) string
}

// HouseholdIndex is a Householder backed by a RecId -> household id map.
type HouseholdIndex map[string]string

// HouseholdID implements Householder.
func (h HouseholdIndex) HouseholdID(recID string) string {
	return h[recID]
}
