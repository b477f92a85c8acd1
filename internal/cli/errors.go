package cli

import "errors"

var errNothingToUpdate = errors.New("nothing to update: pass --title and/or --description")

type configExistsError struct {
	path string
}

func (e configExistsError) Error() string {
	return "config file already exists: " + e.path + " (pass --force to overwrite)"
}

type unknownTopicError struct {
	topic string
}

func (e unknownTopicError) Error() string {
	return "unknown docs topic: " + e.topic + " (run `taskdeck docs` to list topics)"
}

// reportedError marks an error that has already been written to stderr.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// Reported reports whether err was already written to stderr by a command.
func Reported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}
