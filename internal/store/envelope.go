package store

import (
	"fmt"
	"time"

	"github.com/tinylib/msgp/msgp"
)

// FormatVersion is the envelope layout written by this package.
const FormatVersion = 1

// Envelope wraps a game snapshot with enough metadata to list saved games
// without decoding the payload.
type Envelope struct {
	Version int       `msg:"v"`
	GameID  string    `msg:"id"`
	SavedAt time.Time `msg:"saved_at"`
	Hole    int       `msg:"hole"`
	Phase   string    `msg:"phase"`
	Payload []byte    `msg:"payload"`
}

// MarshalMsg implements msgp.Marshaler
func (z *Envelope) MarshalMsg(b []byte) ([]byte, error) {
	o := msgp.Require(b, z.Msgsize())
	o = msgp.AppendMapHeader(o, 6)
	o = msgp.AppendString(o, "v")
	o = msgp.AppendInt(o, z.Version)
	o = msgp.AppendString(o, "id")
	o = msgp.AppendString(o, z.GameID)
	o = msgp.AppendString(o, "saved_at")
	o = msgp.AppendTime(o, z.SavedAt)
	o = msgp.AppendString(o, "hole")
	o = msgp.AppendInt(o, z.Hole)
	o = msgp.AppendString(o, "phase")
	o = msgp.AppendString(o, z.Phase)
	o = msgp.AppendString(o, "payload")
	o = msgp.AppendBytes(o, z.Payload)
	return o, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *Envelope) UnmarshalMsg(bts []byte) ([]byte, error) {
	var field []byte
	sz, bts, err := msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		return bts, msgp.WrapError(err)
	}
	for sz > 0 {
		sz--
		field, bts, err = msgp.ReadMapKeyZC(bts)
		if err != nil {
			return bts, msgp.WrapError(err)
		}
		switch msgp.UnsafeString(field) {
		case "v":
			z.Version, bts, err = msgp.ReadIntBytes(bts)
			if err != nil {
				return bts, msgp.WrapError(err, "Version")
			}
		case "id":
			z.GameID, bts, err = msgp.ReadStringBytes(bts)
			if err != nil {
				return bts, msgp.WrapError(err, "GameID")
			}
		case "saved_at":
			z.SavedAt, bts, err = msgp.ReadTimeBytes(bts)
			if err != nil {
				return bts, msgp.WrapError(err, "SavedAt")
			}
		case "hole":
			z.Hole, bts, err = msgp.ReadIntBytes(bts)
			if err != nil {
				return bts, msgp.WrapError(err, "Hole")
			}
		case "phase":
			z.Phase, bts, err = msgp.ReadStringBytes(bts)
			if err != nil {
				return bts, msgp.WrapError(err, "Phase")
			}
		case "payload":
			z.Payload, bts, err = msgp.ReadBytesBytes(bts, z.Payload)
			if err != nil {
				return bts, msgp.WrapError(err, "Payload")
			}
		default:
			bts, err = msgp.Skip(bts)
			if err != nil {
				return bts, msgp.WrapError(err)
			}
		}
	}
	return bts, nil
}

// Msgsize returns an upper bound estimate of the serialized size
func (z *Envelope) Msgsize() int {
	return 1 + 2 + msgp.IntSize + 3 + msgp.StringPrefixSize + len(z.GameID) +
		9 + msgp.TimeSize + 5 + msgp.IntSize + 6 + msgp.StringPrefixSize + len(z.Phase) +
		8 + msgp.BytesPrefixSize + len(z.Payload)
}

func encodeEnvelope(env *Envelope) ([]byte, error) {
	return env.MarshalMsg(nil)
}

func decodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	rest, err := env.UnmarshalMsg(data)
	if err != nil {
		return nil, fmt.Errorf("store: decode envelope: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("store: %d trailing bytes after envelope", len(rest))
	}
	if env.Version != FormatVersion {
		return nil, fmt.Errorf("store: unsupported format version %d", env.Version)
	}
	return &env, nil
}
