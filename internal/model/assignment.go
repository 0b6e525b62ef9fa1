package model

// Assignment maps folder names to member peers. Names keep the order in which
// they were first added, peers keep insertion order and are not deduplicated.
type Assignment struct {
	names []string
	peers map[string][]Peer
}

func NewAssignment() *Assignment {
	return &Assignment{peers: make(map[string][]Peer)}
}

func (a *Assignment) Add(name string, peer Peer) {
	if _, ok := a.peers[name]; !ok {
		a.names = append(a.names, name)
	}
	a.peers[name] = append(a.peers[name], peer)
}

func (a *Assignment) Names() []string {
	return a.names
}

func (a *Assignment) Peers(name string) []Peer {
	return a.peers[name]
}

func (a *Assignment) Len() int {
	return len(a.names)
}
