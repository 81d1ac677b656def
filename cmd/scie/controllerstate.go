package main

import "github.com/scie-systems/scie-core/pkg/controller"

// controllerStatePayload mirrors the kindedPayload wrapper chainEvidenceWriter
// writes, scoped to the one kind this file cares about.
type controllerStatePayload struct {
	Kind    string             `json:"kind"`
	Payload controller.Record `json:"payload"`
}

const controllerStateKind = "CONTROLLER_STATE"

// latestControllerState scans the WORM chain from the tail backward for
// the most recent persisted controller cycle.
func latestControllerState(rt *runtime) (*controller.State, bool, error) {
	tail, err := rt.store.TailSequence()
	if err != nil {
		return nil, false, err
	}

	var records []controller.Record
	for seq := tail; seq >= 1; seq-- {
		entry, ok, err := rt.chain.Read(seq)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		var wrapper controllerStatePayload
		if err := decodePayload(entry.Payload, &wrapper); err == nil && wrapper.Kind == controllerStateKind {
			records = append(records, wrapper.Payload)
			break // only the most recent cycle is needed
		}
	}

	state, ok := controller.Restore(records)
	return state, ok, nil
}
