package worldstate

import "encoding/binary"

// Snapshot is a deterministic serialization of a world at a known tick,
// sufficient to fully reconstruct it.
type Snapshot struct {
	Tick  int32
	Bytes []byte
}

// CreateSnapshot encodes tick:i32 | nextEntityId:i32 | count:i32 | for each
// entity (in current insertion order): entityId:i32 | typeId:i32 |
// dataLen:i32 | data[dataLen].
func CreateSnapshot(w *World) Snapshot {
	entities := w.Entities()
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(w.tick))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(w.nextEntityID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(entities)))

	for _, entity := range entities {
		data := entity.Serialize()
		header := make([]byte, 12)
		binary.LittleEndian.PutUint32(header[0:4], uint32(entity.EntityID()))
		binary.LittleEndian.PutUint32(header[4:8], uint32(entity.TypeID()))
		binary.LittleEndian.PutUint32(header[8:12], uint32(len(data)))
		buf = append(buf, header...)
		buf = append(buf, data...)
	}

	return Snapshot{Tick: w.tick, Bytes: buf}
}

// RestoreFromSnapshot applies the spec's restore algorithm:
//  1. Record the set of entity ids currently present.
//  2. For each entry in the snapshot: if present, deserialize in place;
//     else construct via the factory registry and insert.
//  3. Remove any entity whose id was present but absent from the snapshot.
//  4. Restore tick and nextEntityId verbatim.
func RestoreFromSnapshot(w *World, snap Snapshot) error {
	data := snap.Bytes
	if len(data) < 12 {
		return ErrTruncatedSnapshot
	}
	tick := int32(binary.LittleEndian.Uint32(data[0:4]))
	nextEntityID := int32(binary.LittleEndian.Uint32(data[4:8]))
	count := int(binary.LittleEndian.Uint32(data[8:12]))

	present := w.EntityIDs()
	seen := make(map[int32]struct{}, count)

	off := 12
	for i := 0; i < count; i++ {
		if len(data) < off+12 {
			return ErrTruncatedSnapshot
		}
		entityID := int32(binary.LittleEndian.Uint32(data[off : off+4]))
		typeID := int32(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		dataLen := int(binary.LittleEndian.Uint32(data[off+8 : off+12]))
		off += 12
		if len(data) < off+dataLen {
			return ErrTruncatedSnapshot
		}
		payload := data[off : off+dataLen]
		off += dataLen

		seen[entityID] = struct{}{}
		if entity, ok := w.Get(entityID); ok {
			if err := entity.Deserialize(payload); err != nil {
				return err
			}
			continue
		}
		entity, err := w.factories.Create(entityID, 0, typeID)
		if err != nil {
			return err
		}
		if err := entity.Deserialize(payload); err != nil {
			return err
		}
		w.Insert(entity)
	}

	for id := range present {
		if _, ok := seen[id]; !ok {
			w.Remove(id)
		}
	}

	w.tick = tick
	w.nextEntityID = nextEntityID
	return nil
}
