package messages

// PostMsg carries work posted to the update loop from another goroutine
type PostMsg struct {
	Fn func()
}

// OpenMsg asks the model to open a directory or image
type OpenMsg struct {
	Path string
}
