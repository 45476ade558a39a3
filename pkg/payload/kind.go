package payload

// Kind identifies a payload type. Pools, factories and the master factory
// are keyed by Kind instead of by the concrete Go type.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindSimpleHit
	KindBeaconHit
	KindTriggerRequest
)

var kindNames = [...]string{
	KindUnknown:        "unknown",
	KindSimpleHit:      "simpleHit",
	KindBeaconHit:      "beaconHit",
	KindTriggerRequest: "triggerRequest",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// Kinds returns every concrete payload kind.
func Kinds() []Kind {
	return []Kind{KindSimpleHit, KindBeaconHit, KindTriggerRequest}
}
