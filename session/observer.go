package session

// Observer receives lifecycle notifications from a Driver.
//
// SessionReady and SessionTerminated run on the driver's loop goroutine.
// MetadataUpdated runs on the library's callback goroutine and must return
// quickly.
type Observer interface {
	// SessionReady is called once, after authentication succeeded and the
	// user identity was read.
	SessionReady(user User)

	// MetadataUpdated is called whenever the library reports new metadata.
	MetadataUpdated()

	// SessionTerminated is called once the loop has exited, before the
	// handle is released.
	SessionTerminated(status Status)
}

// NopObserver implements Observer with empty methods. Embed it to override
// only the hooks you need.
type NopObserver struct{}

// SessionReady implements Observer.
func (NopObserver) SessionReady(User) {}

// MetadataUpdated implements Observer.
func (NopObserver) MetadataUpdated() {}

// SessionTerminated implements Observer.
func (NopObserver) SessionTerminated(Status) {}

// ObserverFuncs adapts plain functions to Observer. Nil fields are no-ops.
type ObserverFuncs struct {
	OnReady      func(User)
	OnMetadata   func()
	OnTerminated func(Status)
}

// SessionReady implements Observer.
func (f ObserverFuncs) SessionReady(u User) {
	if f.OnReady != nil {
		f.OnReady(u)
	}
}

// MetadataUpdated implements Observer.
func (f ObserverFuncs) MetadataUpdated() {
	if f.OnMetadata != nil {
		f.OnMetadata()
	}
}

// SessionTerminated implements Observer.
func (f ObserverFuncs) SessionTerminated(s Status) {
	if f.OnTerminated != nil {
		f.OnTerminated(s)
	}
}
