package repository

import "errors"

type Recorder interface {
	Record(line string) error
}

// Recorders fans every line out to all of its members.
type Recorders []Recorder

func (that Recorders) Record(line string) error {
	var errs []error
	for _, recorder := range that {
		if err := recorder.Record(line); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
