package locker

// Dummy always grants every reservation and holds no state. It is the right
// choice for a cache backend that has no actual concurrent writer to guard
// against (e.g. a process-local, single-writer disk cache used only in
// tests or single-threaded tools).
type Dummy struct{}

var _ Locker = Dummy{}

func (Dummy) StartReading(string) bool { return true }
func (Dummy) StopReading(string)       {}
func (Dummy) StartWriting(string) bool { return true }
func (Dummy) StopWriting(string)       {}
