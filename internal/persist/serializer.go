package persist

// Serializer converts a live object to and from its ObjectState snapshot.
// It has no knowledge of the wider object registry: the loader establishes
// the target's identity and type before Deserialize is called, and the
// serializer only projects fields.
type Serializer struct{}

func NewSerializer() *Serializer {
	return &Serializer{}
}

// Serialize projects obj into a snapshot. The projection is stable:
// serializing an unchanged object twice yields field-for-field identical
// output.
func (s *Serializer) Serialize(obj Object) (ObjectState, error) {
	id := obj.ID()
	st := ObjectState{
		ObjectPath: id.String(),
		IsClone:    id.IsClone,
	}

	if env := obj.Environment(); env != nil {
		st.Environment = &ObjectReference{Path: env.ID().String()}
	}

	if p, ok := obj.(Persistable); ok {
		fields, err := p.CaptureState()
		if err != nil {
			return ObjectState{}, err
		}
		st.Fields = fields
	}

	return st, nil
}

// Deserialize applies a snapshot's fields onto an already-instantiated live
// object. Fields absent from the snapshot keep the target's current
// (blueprint) values; fields the target doesn't understand are ignored.
// Identity and environment are not touched here, that's the loader's job.
func (s *Serializer) Deserialize(state ObjectState, target Object) error {
	p, ok := target.(Persistable)
	if !ok || len(state.Fields) == 0 {
		return nil
	}
	return p.RestoreState(state.Fields)
}
