package dp

// ringModel is a deterministic ring of states. Action a in {-1, 0, +1} moves
// to (s+a) mod n and collects reward[next].
type ringModel struct {
	reward []float64
	gamma  float64
}

func (m *ringModel) NumStates() int { return len(m.reward) }

func (m *ringModel) Actions(_ int, buf []int) []int {
	return append(buf, -1, 0, 1)
}

func (m *ringModel) Backup(s, a int, v []float64) float64 {
	n := len(m.reward)
	next := ((s+a)%n + n) % n
	return m.reward[next] + m.gamma*v[next]
}

// banditModel has independent states that each pick a reward and stay put.
type banditModel struct {
	states int
	reward []float64 // reward per action; action index is the action
	gamma  float64
}

func (m *banditModel) NumStates() int { return m.states }

func (m *banditModel) Actions(_ int, buf []int) []int {
	for a := range m.reward {
		buf = append(buf, a)
	}
	return buf
}

func (m *banditModel) Backup(s, a int, v []float64) float64 {
	return m.reward[a] + m.gamma*v[s]
}

// deadEndModel offers no action at its last state.
type deadEndModel struct{ banditModel }

func (m *deadEndModel) Actions(s int, buf []int) []int {
	if s == m.states-1 {
		return buf
	}
	return m.banditModel.Actions(s, buf)
}

func newRing() *ringModel {
	return &ringModel{reward: []float64{0, 1, 0, 0, 5, 0, 2, 0}, gamma: 0.9}
}
