package card

// Snackbar message ids.
const (
	MsgClubAdded    = "StudentClubs.clubAdded"
	MsgClubNotAdded = "StudentClubs.clubNotAdded"
)

// Message is a localizable notification: a message id and its arguments.
type Message struct {
	Key  string
	Args []any
}

// Snackbar is a single-slot notification. A new message replaces the shown one.
type Snackbar struct {
	Show    bool
	Message Message
}

// Push shows m, replacing whatever was shown.
func (s *Snackbar) Push(m Message) {
	s.Show = true
	s.Message = m
}

// Dismiss hides the snackbar. The last message is kept but not shown.
func (s *Snackbar) Dismiss() {
	s.Show = false
}

// Busy tracks the overlay shown while a submission and its refresh are pending.
// holds counts submissions that have not yet requested their refresh.
type Busy struct {
	Busy  bool
	holds int
}

// UntilRefresh reports whether some submission still pins the overlay.
func (b Busy) UntilRefresh() bool {
	return b.holds > 0
}

// Begin raises the overlay for a new submission.
// POST: Busy is true and at least one hold is active
func (b *Busy) Begin() {
	b.Busy = true
	b.holds++
}

// ReleaseHold drops one submission's hold once it has requested its refresh.
func (b *Busy) ReleaseHold() {
	if b.holds > 0 {
		b.holds--
	}
}

// Settle clears the overlay when no hold remains and no refresh is running.
func (b *Busy) Settle(isRefreshing bool) {
	if b.Busy && b.holds == 0 && !isRefreshing {
		b.Busy = false
	}
}
