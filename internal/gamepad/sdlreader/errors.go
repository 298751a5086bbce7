package sdlreader

// InitError reports that the SDL joystick subsystem could not start.
type InitError struct {
	Reason string
}

func (e *InitError) Error() string {
	return "sdlreader: SDL init failed: " + e.Reason
}
