package run

// SetStatus returns an UpdateSetter that sets the run's status.
func SetStatus(status Status) UpdateSetter {
	return func(r *Run) error {
		if !status.IsValid() {
			return ErrInvalidStatus
		}
		r.Status = status
		return nil
	}
}

// SetNotes returns an UpdateSetter that sets the run's notes.
func SetNotes(notes string) UpdateSetter {
	return func(r *Run) error {
		r.Notes = notes
		return nil
	}
}

// SetSuiteName returns an UpdateSetter that sets the run's suite name.
func SetSuiteName(name string) UpdateSetter {
	return func(r *Run) error {
		r.SuiteName = name
		return nil
	}
}
