package domain

import "fmt"

// Gate is a conversation phase. Gates are strictly ordered and a session
// only ever moves forward; HumanHandoff is the one exit reachable from
// anywhere.
type Gate int

const (
	GateCollectName Gate = iota + 1
	GateCollectPurpose
	GateCollectAmount
	GatePhoneVerify
	GatePitchOptions
	GateSelectOption
	GateVerbalAgreement
	GateGenerateDocument
	GateHumanHandoff
)

var gateNames = map[Gate]string{
	GateCollectName:      "COLLECT_NAME",
	GateCollectPurpose:   "COLLECT_PURPOSE",
	GateCollectAmount:    "COLLECT_AMOUNT",
	GatePhoneVerify:      "PHONE_VERIFY",
	GatePitchOptions:     "PITCH_OPTIONS",
	GateSelectOption:     "SELECT_OPTION",
	GateVerbalAgreement:  "VERBAL_AGREEMENT",
	GateGenerateDocument: "GENERATE_DOCUMENT",
	GateHumanHandoff:     "HUMAN_HANDOFF",
}

func (g Gate) String() string {
	if name, ok := gateNames[g]; ok {
		return name
	}
	return fmt.Sprintf("Gate(%d)", int(g))
}

func (g Gate) Valid() bool {
	_, ok := gateNames[g]
	return ok
}

// Terminal reports whether no further facts may be collected.
func (g Gate) Terminal() bool {
	return g == GateGenerateDocument || g == GateHumanHandoff
}

// ProfileResolved reports whether a session at this gate has passed phone
// verification.
func (g Gate) ProfileResolved() bool {
	return g > GatePhoneVerify && g != GateHumanHandoff
}

func (g Gate) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("unknown gate %d", int(g))
	}
	return []byte(g.String()), nil
}

func (g *Gate) UnmarshalText(text []byte) error {
	for gate, name := range gateNames {
		if name == string(text) {
			*g = gate
			return nil
		}
	}
	return fmt.Errorf("unknown gate %q", string(text))
}
