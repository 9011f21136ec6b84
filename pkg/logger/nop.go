package logger

// Nop discards every message. Engines fall back to it when no logger is given.
type Nop struct{}

var _ Logger = Nop{}

func (n Nop) WithField(string, any) Logger     { return n }
func (n Nop) WithFields(map[string]any) Logger { return n }
func (n Nop) WithError(error) Logger           { return n }
func (Nop) Debug(...any)                       {}
func (Nop) Info(...any)                        {}
func (Nop) Warn(...any)                        {}
func (Nop) Error(...any)                       {}
func (Nop) Debugf(string, ...any)              {}
func (Nop) Infof(string, ...any)               {}
func (Nop) Warnf(string, ...any)               {}
func (Nop) Errorf(string, ...any)              {}
func (Nop) SetLevel(Level)                     {}
func (Nop) GetLevel() Level                    { return Disabled }
