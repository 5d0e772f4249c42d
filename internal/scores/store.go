package scores

// OfflinePlayerSentinel is the placeholder identity the game engine reports
// for participants whose player entity is not loaded.
const OfflinePlayerSentinel = "commands.scoreboard.players.offlinePlayerName"

// GlobalIdentity holds server-wide totals.
const GlobalIdentity = "#global"

// ScoreReader is the read side of Store, used by filters.
type ScoreReader interface {
	Get(identity, counter string) int64
}

// Store is the engine's counter access layer. Missing objectives and missing
// identities read as zero; nothing here returns an error.
type Store struct {
	board Scoreboard
}

func NewStore(board Scoreboard) *Store {
	return &Store{board: board}
}

// Handle is a named counter bound to a Store.
type Handle struct {
	store *Store
	Name  string
}

func (h Handle) Get(identity string) int64 { return h.store.Get(identity, h.Name) }
func (h Handle) Set(identity string, value int64) { h.store.Set(identity, h.Name, value) }
func (h Handle) Add(identity string, delta int64) int64 { return h.store.Add(identity, h.Name, delta) }

// Ensure returns a handle to name, creating the objective when absent. The
// label only applies on creation.
func (s *Store) Ensure(name, label string) Handle {
	if label == "" {
		label = name
	}
	s.board.EnsureObjective(name, label)
	return Handle{store: s, Name: name}
}

// Recreate drops name and creates it again with label, clearing every score.
func (s *Store) Recreate(name, label string) Handle {
	s.board.RemoveObjective(name)
	return s.Ensure(name, label)
}

// Exists reports whether the objective has been created.
func (s *Store) Exists(name string) bool {
	return s.board.HasObjective(name)
}

// Remove deletes an objective and all its scores.
func (s *Store) Remove(name string) {
	s.board.RemoveObjective(name)
}

func (s *Store) Get(identity, counter string) int64 {
	v, _ := s.board.Score(identity, counter)
	return v
}

func (s *Store) Set(identity, counter string, value int64) {
	s.board.SetScore(identity, counter, value)
}

// Add increments a score and returns the new value. The read-modify-write is
// not atomic; callers run on the single dispatch goroutine.
func (s *Store) Add(identity, counter string, delta int64) int64 {
	v := s.Get(identity, counter) + delta
	s.board.SetScore(identity, counter, v)
	return v
}

// Participants returns every identity scored on counter, minus the offline
// placeholder.
func (s *Store) Participants(counter string) []string {
	raw := s.board.Participants(counter)
	out := raw[:0:0]
	for _, identity := range raw {
		if identity == OfflinePlayerSentinel || identity == "" {
			continue
		}
		out = append(out, identity)
	}
	return out
}

// CopyAll writes each identity's value on src into dst, batched when the
// scoreboard supports it. Identities without a score on src copy as zero.
func (s *Store) CopyAll(src, dst string, identities []string) {
	if len(identities) == 0 {
		return
	}
	values := make(map[string]int64, len(identities))
	for _, identity := range identities {
		values[identity] = s.Get(identity, src)
	}

	if bw, ok := s.board.(BatchWriter); ok {
		bw.SetScores(dst, values)
		return
	}
	for identity, v := range values {
		s.board.SetScore(identity, dst, v)
	}
}
