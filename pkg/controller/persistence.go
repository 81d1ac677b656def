package controller

import "github.com/scie-systems/scie-core/pkg/corectx"

// persistedKind is the evidence entry kind the controller writes on every
// cycle (§4.F "Persistence").
const persistedKind = "CONTROLLER_STATE"

// Record is the evidence payload recording one control cycle's outcome,
// alongside the state needed to resume on restart.
type Record struct {
	State  State      `json:"state"`
	Result StepResult `json:"result"`
}

// Persist appends the controller's current state and the last step's
// result as a WORM evidence entry.
func (c *Controller) Persist(writer corectx.EvidenceWriter, last StepResult) (seq uint64, err error) {
	seq, _, err = writer.Append(persistedKind, Record{State: c.Snapshot(), Result: last})
	return seq, err
}

// Restore picks the most recently written CONTROLLER_STATE record out of
// a set of decoded records (e.g. read back from the WORM chain at
// startup) and returns the State to resume from.
func Restore(records []Record) (*State, bool) {
	if len(records) == 0 {
		return nil, false
	}
	latest := records[len(records)-1].State
	return &latest, true
}
