package tictactoe

// Game - holds the current State for a single view and notifies subscribers after every accepted change.
// It is driven by one event loop and is not safe for concurrent use.
type Game struct {
	state State

	subscribers []subscriber
	nextID      int
}

type subscriber struct {
	id     int
	notify func(Snapshot)
}

func NewGame() *Game {
	return &Game{
		state: NewState(),
	}
}

func (that *Game) State() State {
	return that.state
}

func (that *Game) Snapshot() Snapshot {
	return that.state.Snapshot()
}

// Subscribe - registers fn to receive a snapshot after each change. The returned func removes it.
func (that *Game) Subscribe(fn func(Snapshot)) func() {
	that.nextID++
	id := that.nextID

	that.subscribers = append(that.subscribers, subscriber{id: id, notify: fn})

	return func() {
		for i, sub := range that.subscribers {
			if sub.id == id {
				that.subscribers = append(that.subscribers[:i], that.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (that *Game) ApplyMove(cell, row, col int) error {
	next, err := that.state.ApplyMove(cell, row, col)
	if err != nil {
		return err
	}

	that.update(next)

	return nil
}

func (that *Game) JumpTo(step int) error {
	next, err := that.state.JumpTo(step)
	if err != nil {
		return err
	}

	that.update(next)

	return nil
}

func (that *Game) ToggleSort() {
	that.update(that.state.ToggleSort())
}

func (that *Game) update(next State) {
	that.state = next

	snapshot := next.Snapshot()
	subscribers := append([]subscriber(nil), that.subscribers...)
	for _, sub := range subscribers {
		sub.notify(snapshot)
	}
}
