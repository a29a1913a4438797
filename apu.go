package famicore

// RegisterWrite is a CPU write to one of the sound registers in
// $4000-$4017, tagged with the CPU cycle it happened on so a renderer
// can reconstruct the timing.
type RegisterWrite struct {
	Cycle uint64
	Addr  uint16
	Data  uint8
}

// APUSink receives sound register traffic. Synthesis happens outside
// the core; the console only forwards the write stream.
type APUSink interface {
	PushRegisterWrite(w RegisterWrite)
}

// RegisterLog is the default sink. It buffers writes until drained.
type RegisterLog struct {
	writes []RegisterWrite
}

func NewRegisterLog() *RegisterLog {
	return &RegisterLog{}
}

func (l *RegisterLog) PushRegisterWrite(w RegisterWrite) {
	l.writes = append(l.writes, w)
}

// Drain returns the buffered writes and empties the log.
func (l *RegisterLog) Drain() []RegisterWrite {
	writes := l.writes
	l.writes = nil
	return writes
}
