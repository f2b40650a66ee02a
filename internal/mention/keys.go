package mention

// KeyType identifies the keys the editor routes.
type KeyType int

const (
	KeyOther KeyType = iota
	KeyRunes
	KeyBackspace
	KeyUp
	KeyDown
	KeyEnter
	KeyTab
	KeyEscape
)

// Key is a keypress as the host delivers it. Host carries the host's own
// event so queued keys can be redispatched unchanged.
type Key struct {
	Type  KeyType
	Runes []rune
	Host  any
}

// Outcome tells the host what to do with a key after the editor saw it.
type Outcome int

const (
	// Unhandled: apply the surface's default behaviour.
	Unhandled Outcome = iota
	// Handled: the editor consumed the key; suppress the default.
	Handled
	// Queued: a commit is still placing the cursor; the key comes back from Settle.
	Queued
)

func (o Outcome) String() string {
	switch o {
	case Handled:
		return "handled"
	case Queued:
		return "queued"
	default:
		return "unhandled"
	}
}
